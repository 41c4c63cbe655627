package local

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/test"
	"github.com/prismwriting/prism/internal/pkg/utils/handler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vgarvardt/gue/v5"
)

type recorder struct {
	lock sync.Mutex
	got  []string
	fail int
}

func (r *recorder) work(ctx context.Context, j *gue.Job) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	var m messages.JobMessage
	if err := json.Unmarshal(j.Args, &m); err != nil {
		return err
	}
	if r.fail > 0 {
		r.fail--
		return errors.New("olia")
	}
	r.got = append(r.got, j.Type+"/"+m.ID)
	return nil
}

func (r *recorder) values() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]string{}, r.got...)
}

func TestNewPool(t *testing.T) {
	_, err := NewPool(gue.WorkMap{}, 0, 10, handler.NoBackoff())
	assert.NotNil(t, err)
	_, err = NewPool(gue.WorkMap{}, 1, 0, handler.NoBackoff())
	assert.NotNil(t, err)
	p, err := NewPool(gue.WorkMap{}, 2, 10, handler.NoBackoff())
	assert.Nil(t, err)
	assert.Equal(t, 10, cap(p.jobs))
}

func TestPool_Runs(t *testing.T) {
	r := &recorder{}
	p, err := NewPool(gue.WorkMap{messages.Process: r.work}, 2, 10, handler.NoBackoff())
	require.Nil(t, err)
	p.Start(test.Ctx(t))
	require.Nil(t, p.SendMessage(test.Ctx(t), &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: "1"}}, messages.Process))
	assert.Eventually(t, func() bool { return len(r.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{messages.Process + "/1"}, r.values())
	p.Shutdown()
}

func TestPool_Retries(t *testing.T) {
	r := &recorder{fail: 2}
	p, err := NewPool(gue.WorkMap{}, 1, 10, handler.NoBackoff())
	require.Nil(t, err)
	p.Register(gue.WorkMap{messages.StatusChange: r.work})
	p.Start(test.Ctx(t))
	require.Nil(t, p.SendMessage(test.Ctx(t), &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: "1"}}, messages.StatusChange))
	assert.Eventually(t, func() bool { return len(r.values()) == 1 }, time.Second, 5*time.Millisecond)
	p.Shutdown()
}

func TestPool_DropsUnknown(t *testing.T) {
	r := &recorder{}
	p, err := NewPool(gue.WorkMap{messages.Process: r.work}, 1, 10, handler.NoBackoff())
	require.Nil(t, err)
	p.Start(test.Ctx(t))
	require.Nil(t, p.SendMessage(test.Ctx(t), &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: "1"}}, messages.Mail))
	require.Nil(t, p.SendMessage(test.Ctx(t), &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: "2"}}, messages.Process))
	assert.Eventually(t, func() bool { return len(r.values()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{messages.Process + "/2"}, r.values())
	p.Shutdown()
}

func TestPool_HandlerSendsUnhandled(t *testing.T) {
	r := &recorder{}
	p, err := NewPool(gue.WorkMap{}, 1, 1, handler.NoBackoff())
	require.Nil(t, err)
	p.Register(gue.WorkMap{messages.Process: func(ctx context.Context, j *gue.Job) error {
		for i := 0; i < 20; i++ {
			if err := p.SendMessage(ctx, &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: "s"}},
				messages.StatusChange); err != nil {
				return err
			}
		}
		return r.work(ctx, j)
	}})
	p.Start(test.Ctx(t))
	for _, id := range []string{"1", "2", "3"} {
		require.Nil(t, p.SendMessage(test.Ctx(t), &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: id}}, messages.Process))
	}
	assert.Eventually(t, func() bool { return len(r.values()) == 3 }, time.Second, 5*time.Millisecond)
	p.Shutdown()
}

func TestPool_Shutdown(t *testing.T) {
	r := &recorder{}
	p, err := NewPool(gue.WorkMap{messages.Process: r.work}, 1, 10, handler.NoBackoff())
	require.Nil(t, err)
	p.Start(test.Ctx(t))
	p.Shutdown()
	p.Shutdown()
	err = p.SendMessage(test.Ctx(t), &messages.JobMessage{}, messages.Process)
	assert.NotNil(t, err)
}
