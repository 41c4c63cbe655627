package handler

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

type testMsg struct {
	ID string `json:"id"`
}

type testData struct {
	calls []string
	err   error
}

func testHandler(ctx context.Context, m *testMsg, data *testData) error {
	data.calls = append(data.calls, m.ID)
	return data.err
}

func TestCreate(t *testing.T) {
	data := &testData{}
	f := Create(data, testHandler, DefaultOpts[testMsg]())
	err := f(test.Ctx(t), &gue.Job{Queue: "q", Type: "t", Args: []byte(`{"id":"1"}`)})
	assert.Nil(t, err)
	assert.Equal(t, []string{"1"}, data.calls)
}

func TestCreate_Retries(t *testing.T) {
	data := &testData{err: errors.New("olia")}
	f := Create(data, testHandler, DefaultOpts[testMsg]().WithBackoff(NoBackoff()))
	err := f(test.Ctx(t), &gue.Job{Queue: "q", Type: "t", Args: []byte(`{"id":"1"}`), ErrorCount: 1})
	assert.NotNil(t, err)
}

func TestCreate_StopsRetry(t *testing.T) {
	data := &testData{err: errors.New("olia")}
	f := Create(data, testHandler, DefaultOpts[testMsg]())
	err := f(test.Ctx(t), &gue.Job{Queue: "q", Type: "t", Args: []byte(`{"id":"1"}`), ErrorCount: 3})
	assert.Nil(t, err)
}

func TestCreate_NonRetryable(t *testing.T) {
	data := &testData{err: fmt.Errorf("wrap: %w", utils.NewErrNonRetryable(errors.New("olia")))}
	f := Create(data, testHandler, DefaultOpts[testMsg]())
	err := f(test.Ctx(t), &gue.Job{Queue: "q", Type: "t", Args: []byte(`{"id":"1"}`)})
	assert.Nil(t, err)
}

func TestCreate_WrongMsg(t *testing.T) {
	data := &testData{}
	f := Create(data, testHandler, DefaultOpts[testMsg]())
	err := f(test.Ctx(t), &gue.Job{Queue: "q", Type: "t", Args: []byte(`{"id":`)})
	assert.Nil(t, err)
	assert.Empty(t, data.calls)
}

func TestCreate_CallsFailure(t *testing.T) {
	data := &testData{err: errors.New("olia")}
	var got error
	f := Create(data, testHandler, DefaultOpts[testMsg]().WithFailure(
		func(ctx context.Context, m *testMsg, err error, j *gue.Job) (bool, time.Duration, error) {
			got = err
			return false, 0, nil
		}))
	err := f(test.Ctx(t), &gue.Job{Queue: "q", Type: "t", Args: []byte(`{"id":"1"}`)})
	assert.Nil(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "olia", got.Error())
}

func TestCreate_Timeout(t *testing.T) {
	var deadline bool
	f := Create(&testData{}, func(ctx context.Context, m *testMsg, data *testData) error {
		_, deadline = ctx.Deadline()
		return nil
	}, DefaultOpts[testMsg]().WithTimeout(time.Second))
	assert.Nil(t, f(test.Ctx(t), &gue.Job{Args: []byte(`{}`)}))
	assert.True(t, deadline)
}

func TestCreate_PanicsNoOpts(t *testing.T) {
	assert.Panics(t, func() { Create[testMsg](&testData{}, testHandler, nil) })
}

func Test_fullJitter(t *testing.T) {
	for i := 0; i < 100; i++ {
		d := fullJitter(time.Second)
		assert.GreaterOrEqual(t, d, time.Duration(0))
		assert.Less(t, d, time.Second)
	}
}

func TestShouldRetry(t *testing.T) {
	assert.True(t, ShouldRetry(errors.New("olia"), &gue.Job{ErrorCount: 0}, 2))
	assert.False(t, ShouldRetry(errors.New("olia"), &gue.Job{ErrorCount: 2}, 2))
	assert.False(t, ShouldRetry(utils.NewErrNonRetryable(errors.New("olia")), &gue.Job{}, 2))
}
