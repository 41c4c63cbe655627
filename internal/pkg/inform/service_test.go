package inform

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/airenas/async-api/pkg/inform"
	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/jordan-wright/email"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/prismwriting/prism/internal/pkg/test/mocks"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

var (
	dbMock     *mockDB
	storeMock  *mocks.JobStore
	senderMock *mockEmailSender
	makerMock  *mockEmailMaker
	mailMock   *mockMailMaker
	srvData    *ServiceData
)

func initTest(t *testing.T) {
	dbMock = &mockDB{}
	storeMock = &mocks.JobStore{}
	senderMock = &mockEmailSender{}
	makerMock = &mockEmailMaker{}
	mailMock = &mockMailMaker{}
	srvData = &ServiceData{DB: dbMock, Store: storeMock, GueClient: &gue.Client{}, WorkerCount: 10,
		EmailSender: senderMock, EmailMaker: makerMock, MailMaker: mailMock}
	storeMock.On("Get", mock.Anything, "1").Return(&persistence.Job{ID: "1", Email: "o@o.lt"}, nil)
	dbMock.On("LockEmailTable", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	dbMock.On("UnLockEmailTable", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	senderMock.On("Send", mock.Anything).Return(nil)
	makerMock.On("Make", mock.Anything).Return(&email.Email{From: "o@o.lt", Text: []byte("text")}, nil)
	mailMock.On("Make", mock.Anything).Return(&email.Email{From: "o@o.lt", Text: []byte("text")}, nil)
}

func tInform(tp string) *amessages.InformMessage {
	return &amessages.InformMessage{QueueMessage: amessages.QueueMessage{ID: "1"}, Type: tp}
}

func Test_handleInform(t *testing.T) {
	initTest(t)
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeStarted), srvData)
	assert.Nil(t, err)
	require.Equal(t, 2, len(dbMock.Calls))
	assert.Equal(t, amessages.InformTypeStarted, dbMock.Calls[0].Arguments[2])
	assert.Equal(t, amessages.InformTypeStarted, dbMock.Calls[1].Arguments[2])
	assert.Equal(t, 2, *dbMock.Calls[1].Arguments[3].(*int))
	d := makerMock.Calls[0].Arguments[0].(*inform.Data)
	assert.Equal(t, "o@o.lt", d.Email)
	assert.Equal(t, "1", d.ID)
}

func Test_handleInform_Finished(t *testing.T) {
	initTest(t)
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeFinished), srvData)
	assert.Nil(t, err)
	require.Equal(t, 2, len(dbMock.Calls))
	assert.Equal(t, amessages.InformTypeFinished, dbMock.Calls[0].Arguments[2])
}

func Test_handleInform_Location(t *testing.T) {
	initTest(t)
	loc := time.FixedZone("X", 3600*3)
	srvData.Location = loc
	m := tInform(amessages.InformTypeStarted)
	m.At = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	require.Nil(t, handleInform(test.Ctx(t), m, srvData))
	d := makerMock.Calls[0].Arguments[0].(*inform.Data)
	assert.Equal(t, 13, d.MsgTime.Hour())
}

func Test_handleInform_NoEmail(t *testing.T) {
	initTest(t)
	storeMock.ExpectedCalls = nil
	storeMock.On("Get", mock.Anything, "1").Return(&persistence.Job{ID: "1"}, nil)
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeStarted), srvData)
	assert.Nil(t, err)
	assert.Empty(t, senderMock.Calls)
	assert.Empty(t, dbMock.Calls)
}

func Test_handleInform_NoJob(t *testing.T) {
	initTest(t)
	storeMock.ExpectedCalls = nil
	storeMock.On("Get", mock.Anything, "1").Return(nil, nil)
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeStarted), srvData)
	assert.Nil(t, err)
	assert.Empty(t, senderMock.Calls)
}

func Test_handleInform_FailStore(t *testing.T) {
	initTest(t)
	storeMock.ExpectedCalls = nil
	storeMock.On("Get", mock.Anything, "1").Return(nil, fmt.Errorf("err"))
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeStarted), srvData)
	assert.NotNil(t, err)
}

func Test_handleInform_FailMaker(t *testing.T) {
	initTest(t)
	makerMock.ExpectedCalls = nil
	makerMock.On("Make", mock.Anything).Return(nil, fmt.Errorf("err"))
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeStarted), srvData)
	assert.NotNil(t, err)
}

func Test_handleInform_FailLock(t *testing.T) {
	initTest(t)
	dbMock.ExpectedCalls = nil
	dbMock.On("LockEmailTable", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("err"))
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeStarted), srvData)
	assert.NotNil(t, err)
	assert.Empty(t, senderMock.Calls)
}

func Test_handleInform_FailSender(t *testing.T) {
	initTest(t)
	senderMock.ExpectedCalls = nil
	senderMock.On("Send", mock.Anything).Return(fmt.Errorf("err"))
	err := handleInform(test.Ctx(t), tInform(amessages.InformTypeStarted), srvData)
	assert.NotNil(t, err)
	require.Equal(t, 2, len(dbMock.Calls))
	assert.Equal(t, 0, *dbMock.Calls[1].Arguments[3].(*int))
}

func Test_handleMail(t *testing.T) {
	initTest(t)
	m := &messages.MailMessage{QueueMessage: amessages.QueueMessage{ID: "q1"}, Kind: messages.MailQuote, Email: "a@a.lt"}
	err := handleMail(test.Ctx(t), m, srvData)
	assert.Nil(t, err)
	assert.Equal(t, m, mailMock.Calls[0].Arguments[0])
	assert.Equal(t, 1, len(senderMock.Calls))
	assert.Empty(t, dbMock.Calls)
}

func Test_handleMail_Fail(t *testing.T) {
	initTest(t)
	err := handleMail(test.Ctx(t), &messages.MailMessage{Kind: messages.MailQuote}, srvData)
	assert.True(t, utils.IsNonRetryable(err))

	mailMock.ExpectedCalls = nil
	mailMock.On("Make", mock.Anything).Return(nil, fmt.Errorf("err"))
	err = handleMail(test.Ctx(t), &messages.MailMessage{Kind: "olia", Email: "a@a.lt"}, srvData)
	assert.True(t, utils.IsNonRetryable(err))

	initTest(t)
	senderMock.ExpectedCalls = nil
	senderMock.On("Send", mock.Anything).Return(fmt.Errorf("err"))
	err = handleMail(test.Ctx(t), &messages.MailMessage{Kind: messages.MailQuote, Email: "a@a.lt"}, srvData)
	assert.NotNil(t, err)
	assert.False(t, utils.IsNonRetryable(err))
}

func TestWorkMap(t *testing.T) {
	initTest(t)
	wm := WorkMap(srvData)
	require.NotNil(t, wm[messages.Inform])
	f := wm[messages.Mail]
	require.NotNil(t, f)
	assert.Nil(t, f(test.Ctx(t), &gue.Job{Args: []byte(`{"id":"1","kind":"Quote","email":"a@a.lt"}`)}))
	assert.Equal(t, 1, len(senderMock.Calls))
}

func Test_validate(t *testing.T) {
	tests := []struct {
		name    string
		change  func(*ServiceData)
		wantErr bool
	}{
		{name: "OK", change: func(*ServiceData) {}, wantErr: false},
		{name: "Workers", change: func(d *ServiceData) { d.WorkerCount = 0 }, wantErr: true},
		{name: "EmailMaker", change: func(d *ServiceData) { d.EmailMaker = nil }, wantErr: true},
		{name: "MailMaker", change: func(d *ServiceData) { d.MailMaker = nil }, wantErr: true},
		{name: "Sender", change: func(d *ServiceData) { d.EmailSender = nil }, wantErr: true},
		{name: "DB", change: func(d *ServiceData) { d.DB = nil }, wantErr: true},
		{name: "Store", change: func(d *ServiceData) { d.Store = nil }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			initTest(t)
			tt.change(srvData)
			if err := validate(srvData); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

type mockEmailSender struct{ mock.Mock }

func (m *mockEmailSender) Send(email *email.Email) error {
	args := m.Called(email)
	return args.Error(0)
}

type mockEmailMaker struct{ mock.Mock }

func (m *mockEmailMaker) Make(data *inform.Data) (*email.Email, error) {
	args := m.Called(data)
	return toEmail(args.Get(0)), args.Error(1)
}

type mockMailMaker struct{ mock.Mock }

func (m *mockMailMaker) Make(mm *messages.MailMessage) (*email.Email, error) {
	args := m.Called(mm)
	return toEmail(args.Get(0)), args.Error(1)
}

func toEmail(v any) *email.Email {
	if v == nil {
		return nil
	}
	return v.(*email.Email)
}

type mockDB struct{ mock.Mock }

func (m *mockDB) LockEmailTable(ctx context.Context, id, tp string) error {
	args := m.Called(ctx, id, tp)
	return args.Error(0)
}

func (m *mockDB) UnLockEmailTable(ctx context.Context, id, tp string, v *int) error {
	args := m.Called(ctx, id, tp, v)
	return args.Error(0)
}
