package statusservice

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/prismwriting/prism/internal/pkg/test/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var (
	wsHandlerMock *mockWSConnHandler
	storeMock     *mocks.JobStore
	tData         *Data
	tEcho         *echo.Echo
)

func initTest(t *testing.T) {
	wsHandlerMock = &mockWSConnHandler{}
	storeMock = &mocks.JobStore{}
	tData = &Data{Store: storeMock, WSHandler: wsHandlerMock}
	tEcho = initRoutes(tData)
	storeMock.On("Get", mock.Anything, mock.Anything).Return(&persistence.Job{ID: "1", Status: "complete",
		Progress: 100}, nil)
}

func TestWrongPath(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/invalid", nil)
	test.Code(t, tEcho, req, http.StatusNotFound)
}

func TestWrongMethod(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodPost, "/status/1", nil)
	test.Code(t, tEcho, req, http.StatusMethodNotAllowed)
}

func Test_Status_Returns(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	res := test.Decode[result](t, resp.Result())
	assert.Equal(t, "1", res.ID)
	assert.Equal(t, "complete", res.Status)
	assert.Equal(t, 100, res.Progress)
	assert.Equal(t, "1", storeMock.Calls[0].Arguments[1])
}

func Test_Status_NotFound(t *testing.T) {
	initTest(t)
	storeMock.ExpectedCalls = nil
	storeMock.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/status/2", nil)
	resp := test.Code(t, tEcho, req, http.StatusNotFound)
	assert.Contains(t, test.RStr(t, resp.Body), "Job not found")
}

func Test_Status_Fail(t *testing.T) {
	initTest(t)
	storeMock.ExpectedCalls = nil
	storeMock.On("Get", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("olia"))
	req := httptest.NewRequest(http.MethodGet, "/status/1", nil)
	test.Code(t, tEcho, req, http.StatusInternalServerError)
}

func Test_Live(t *testing.T) {
	initTest(t)
	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	resp := test.Code(t, tEcho, req, http.StatusOK)
	assert.Equal(t, `{"service":"OK"}`, resp.Body.String())
}

func Test_validate(t *testing.T) {
	initTest(t)
	type args struct {
		data *Data
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{name: "OK", args: args{data: &Data{Store: storeMock, WSHandler: wsHandlerMock}}, wantErr: false},
		{name: "Fail Handler", args: args{data: &Data{Store: storeMock}}, wantErr: true},
		{name: "Fail Store", args: args{data: &Data{WSHandler: wsHandlerMock}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validate(tt.args.data); (err != nil) != tt.wantErr {
				t.Errorf("StartWebServer() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type mockWSConnHandler struct{ mock.Mock }

func (m *mockWSConnHandler) HandleConnection(wc WsConn) error {
	args := m.Called(wc)
	return args.Error(0)
}

func (m *mockWSConnHandler) GetConnections(id string) ([]WsConn, bool) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Bool(1)
	}
	return args.Get(0).([]WsConn), args.Bool(1)
}
