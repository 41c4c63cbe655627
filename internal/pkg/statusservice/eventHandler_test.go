package statusservice

import (
	"fmt"
	"testing"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/prismwriting/prism/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

var (
	storeEHMock    *mocks.JobStore
	handlerEHMMock *mockWSConnHandler
	hndData        *HandlerData
	connMock       *mockWSConn
)

func initHandlerTest(t *testing.T) {
	storeEHMock = &mocks.JobStore{}
	handlerEHMMock = &mockWSConnHandler{}
	connMock = &mockWSConn{}
	hndData = &HandlerData{Store: storeEHMock, GueClient: &gue.Client{}, WorkerCount: 10, WSHandler: handlerEHMMock}
	handlerEHMMock.On("GetConnections", mock.Anything).Return([]WsConn{connMock}, true)
	storeEHMock.On("Get", mock.Anything, mock.Anything).Return(&persistence.Job{ID: "1", Status: "analyzing",
		Progress: 50, CurrentStep: "Analyzing content..."}, nil)
	connMock.On("WriteJSON", mock.Anything).Return(nil)
}

func tMsg() *messages.JobMessage {
	return &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: "1"}}
}

func Test_handleStatus(t *testing.T) {
	initHandlerTest(t)
	err := handleStatus(test.Ctx(t), tMsg(), hndData)
	assert.Nil(t, err)
	require.Equal(t, 1, len(connMock.Calls))
	res := connMock.Calls[0].Arguments[0].(*result)
	assert.Equal(t, "1", res.ID)
	assert.Equal(t, "analyzing", res.Status)
	assert.Equal(t, 50, res.Progress)
	assert.Equal(t, "Analyzing content...", res.CurrentStep)
	require.NotNil(t, res.Job)
}

func Test_handleStatus_NoConn(t *testing.T) {
	initHandlerTest(t)
	handlerEHMMock.ExpectedCalls = nil
	handlerEHMMock.On("GetConnections", mock.Anything).Return([]WsConn{}, false)
	err := handleStatus(test.Ctx(t), tMsg(), hndData)
	assert.Nil(t, err)
	assert.Empty(t, connMock.Calls)
	assert.Empty(t, storeEHMock.Calls)
}

func Test_handleStatus_NoJob(t *testing.T) {
	initHandlerTest(t)
	storeEHMock.ExpectedCalls = nil
	storeEHMock.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	err := handleStatus(test.Ctx(t), tMsg(), hndData)
	assert.NotNil(t, err)
}

func Test_handleStatus_Error(t *testing.T) {
	initHandlerTest(t)
	storeEHMock.ExpectedCalls = nil
	storeEHMock.On("Get", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia"))
	err := handleStatus(test.Ctx(t), tMsg(), hndData)
	assert.NotNil(t, err)
}

func Test_handleStatus_WriteFail(t *testing.T) {
	initHandlerTest(t)
	connMock.ExpectedCalls = nil
	connMock.On("WriteJSON", mock.Anything).Return(fmt.Errorf("olia"))
	err := handleStatus(test.Ctx(t), tMsg(), hndData)
	assert.Nil(t, err)
}

func TestWorkMap(t *testing.T) {
	initHandlerTest(t)
	f, ok := WorkMap(hndData)[messages.StatusChange]
	require.True(t, ok)
	assert.Nil(t, f(test.Ctx(t), &gue.Job{Args: []byte(`{"id":"1"}`)}))
	assert.Equal(t, 1, len(connMock.Calls))
}

func Test_validateHandler(t *testing.T) {
	initHandlerTest(t)
	type args struct {
		data *HandlerData
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{name: "OK", args: args{data: &HandlerData{Store: storeEHMock, WorkerCount: 10, WSHandler: handlerEHMMock}}, wantErr: false},
		{name: "Fail no store", args: args{data: &HandlerData{WorkerCount: 10, WSHandler: handlerEHMMock}}, wantErr: true},
		{name: "Fail no workers", args: args{data: &HandlerData{Store: storeEHMock, WSHandler: handlerEHMMock}}, wantErr: true},
		{name: "Fail no handler", args: args{data: &HandlerData{Store: storeEHMock, WorkerCount: 10}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validateHandler(tt.args.data); (err != nil) != tt.wantErr {
				t.Errorf("validateHandler() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestStartStatusHandler_NoClient(t *testing.T) {
	initHandlerTest(t)
	hndData.GueClient = nil
	_, err := StartStatusHandler(test.Ctx(t), hndData)
	assert.NotNil(t, err)
}

type mockWSConn struct{ mock.Mock }

func (m *mockWSConn) ReadMessage() (messageType int, p []byte, err error) {
	args := m.Called()
	return args.Int(0), args.Get(1).([]byte), args.Error(2)
}

func (m *mockWSConn) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockWSConn) WriteJSON(v interface{}) error {
	args := m.Called(v)
	return args.Error(0)
}
