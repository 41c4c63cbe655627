package local

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/vgarvardt/gue/v5"
)

// Pool runs queue handlers in process, it replaces the postgres queue
// when all services live in one binary.
// Messages for unregistered types are dropped
type Pool struct {
	jobs    chan *gue.Job
	wm      gue.WorkMap
	workers int
	backoff gue.Backoff
	maxErrs int32

	wg       sync.WaitGroup
	retryWg  sync.WaitGroup
	lock     sync.RWMutex
	closed   bool
	stopRetr chan struct{}
}

// NewPool creates a pool with a buffered channel of size queueSize
func NewPool(wm gue.WorkMap, workers, queueSize int, backoff gue.Backoff) (*Pool, error) {
	if workers < 1 {
		return nil, fmt.Errorf("no worker count provided")
	}
	if queueSize < 1 {
		return nil, fmt.Errorf("wrong queue size %d", queueSize)
	}
	return &Pool{jobs: make(chan *gue.Job, queueSize), wm: wm, workers: workers, backoff: backoff,
		maxErrs: 10, stopRetr: make(chan struct{})}, nil
}

// Register adds handlers, must be called before Start
func (p *Pool) Register(wm gue.WorkMap) {
	for k, v := range wm {
		p.wm[k] = v
	}
}

// Start launches workers, they exit when ctx is canceled or Shutdown is called
func (p *Pool) Start(ctx context.Context) {
	goapp.Log.Info().Int("workers", p.workers).Msg("starting local workers")
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// SendMessage implements the queue sender, messages without a registered handler
// are dropped before they reach the queue
func (p *Pool) SendMessage(ctx context.Context, msg amessages.Message, dest string) error {
	args, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("can't marshal msg: %w", err)
	}
	queue, tp := messages.Split(dest)
	if _, ok := p.wm[tp]; !ok {
		goapp.Log.Debug().Str("type", tp).Msg("no handler, drop msg")
		return nil
	}
	j := &gue.Job{Queue: queue, Type: tp, Args: args}
	return p.put(ctx, j)
}

func (p *Pool) put(ctx context.Context, j *gue.Job) error {
	p.lock.RLock()
	defer p.lock.RUnlock()
	if p.closed {
		return fmt.Errorf("pool closed")
	}
	select {
	case p.jobs <- j:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("can't enqueue %s: %w", j.Type, ctx.Err())
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	goapp.Log.Debug().Int("worker", id).Msg("started")
	defer goapp.Log.Debug().Int("worker", id).Msg("stopped")
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-p.jobs:
			if !ok {
				return
			}
			p.run(ctx, j)
		}
	}
}

func (p *Pool) run(ctx context.Context, j *gue.Job) {
	f, ok := p.wm[j.Type]
	if !ok {
		goapp.Log.Debug().Str("type", j.Type).Msg("no handler, drop msg")
		return
	}
	err := f(ctx, j)
	if err == nil {
		return
	}
	j.ErrorCount++
	j.LastError.String, j.LastError.Valid = err.Error(), true
	if j.ErrorCount > p.maxErrs {
		goapp.Log.Error().Err(err).Str("type", j.Type).Msg("too many retries, drop msg")
		return
	}
	p.retry(ctx, j, p.backoff(int(j.ErrorCount)))
}

func (p *Pool) retry(ctx context.Context, j *gue.Job, after time.Duration) {
	p.retryWg.Add(1)
	go func() {
		defer p.retryWg.Done()
		select {
		case <-ctx.Done():
			return
		case <-p.stopRetr:
			return
		case <-time.After(after):
		}
		if err := p.put(ctx, j); err != nil {
			goapp.Log.Warn().Err(err).Str("type", j.Type).Msg("can't retry")
		}
	}()
}

// Shutdown stops accepting messages, waits for workers to finish queued ones
func (p *Pool) Shutdown() {
	p.lock.Lock()
	if p.closed {
		p.lock.Unlock()
		return
	}
	p.closed = true
	close(p.stopRetr)
	p.lock.Unlock()
	p.retryWg.Wait()
	close(p.jobs)
	p.wg.Wait()
}
