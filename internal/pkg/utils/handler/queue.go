package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/vgarvardt/gue/v5"
)

// MsgSender provides send msg functionality
type MsgSender interface {
	SendMessage(context.Context, amessages.Message, string) error
}

// FailureFunc decides what to do with a failed message.
// Returns if the message must be retried and an optional retry delay
type FailureFunc[TM any] func(ctx context.Context, m *TM, err error, j *gue.Job) (bool, time.Duration, error)

// Opts configures the queue handler
type Opts[TM any] struct {
	backoff        gue.Backoff
	timeout        time.Duration
	failureHandler FailureFunc[TM]
}

// Create wraps a typed message handler into gue.WorkFunc
func Create[TM any, SD any](data *SD, hf func(context.Context, *TM, *SD) error, opts *Opts[TM]) gue.WorkFunc {
	if opts == nil {
		goapp.Log.Panic().Msg("no opts provided")
	}
	return func(ctx context.Context, j *gue.Job) error {
		goapp.Log.Info().Str("queue", j.Queue).Str("type", j.Type).Int32("errCount", j.ErrorCount).Msg("got msg")

		var m TM
		err := json.Unmarshal(j.Args, &m)
		if err != nil {
			err = utils.NewErrNonRetryable(fmt.Errorf("could not unmarshal message: %w", err))
		} else {
			wrkCtx, cf := context.WithTimeout(ctx, opts.timeout)
			defer cf()
			err = hf(wrkCtx, &m, data)
			if err != nil {
				goapp.Log.Warn().Err(err).Str("queue", j.Queue).Str("type", j.Type).Msg("fail")
			}
		}
		if err == nil {
			return nil
		}
		retry, delay, errHandler := opts.failureHandler(ctx, &m, err, j)
		if errHandler != nil {
			goapp.Log.Error().Err(errHandler).Str("queue", j.Queue).Str("type", j.Type).Int32("errCount", j.ErrorCount).Send()
			if j.ErrorCount > 5 {
				return nil
			}
			retry = true
		}
		if !retry {
			goapp.Log.Warn().Str("queue", j.Queue).Str("type", j.Type).Int32("errCount", j.ErrorCount).Msg("will not retry")
			return nil
		}
		if delay == 0 {
			delay = opts.backoff(int(j.ErrorCount + 1))
		}
		goapp.Log.Info().Str("queue", j.Queue).Str("type", j.Type).Dur("after", delay).Msg("retry after")
		return gue.ErrRescheduleJobIn(delay, err.Error())
	}
}

// DefaultOpts returns options with 15 min timeout and three retries
func DefaultOpts[TM any]() *Opts[TM] {
	return &Opts[TM]{timeout: time.Minute * 15, failureHandler: RetryFailure[TM](3), backoff: DefaultBackoff()}
}

// DefaultBackoff grows linearly by 10s with full jitter
func DefaultBackoff() gue.Backoff {
	return func(retries int) time.Duration {
		return fullJitter(time.Duration(retries) * time.Second * 10)
	}
}

// NoBackoff retries immediately
func NoBackoff() gue.Backoff {
	return func(retries int) time.Duration {
		return 0
	}
}

// DefaultBackoffOrTest returns NoBackoff for tests
func DefaultBackoffOrTest(test bool) gue.Backoff {
	if test {
		return NoBackoff()
	}
	return DefaultBackoff()
}

// WithFailure sets failure handler
func (o *Opts[TM]) WithFailure(failureHandler FailureFunc[TM]) *Opts[TM] {
	o.failureHandler = failureHandler
	return o
}

// WithTimeout sets timeout for one message handling
func (o *Opts[TM]) WithTimeout(timeout time.Duration) *Opts[TM] {
	o.timeout = timeout
	return o
}

// WithBackoff sets retry backoff
func (o *Opts[TM]) WithBackoff(b gue.Backoff) *Opts[TM] {
	o.backoff = b
	return o
}

// fullJitter return randomized duration in interval [0, t)
// as suggested by https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
func fullJitter(t time.Duration) time.Duration {
	// `rand` here is used just for backoff jitter,
	return time.Duration(float64(t) * rand.Float64())
}

// RetryFailure retries until the message failed more than maxRetries times,
// non retryable errors are dropped at once
func RetryFailure[TM any](maxRetries int32) FailureFunc[TM] {
	return func(ctx context.Context, message *TM, err error, j *gue.Job) (bool, time.Duration, error) {
		return ShouldRetry(err, j, maxRetries), 0, nil
	}
}

// ShouldRetry checks error type and the job error count
func ShouldRetry(err error, j *gue.Job, maxRetries int32) bool {
	if utils.IsNonRetryable(err) {
		goapp.Log.Info().Str("queue", j.Queue).Str("type", j.Type).Msg("non retryable error")
		return false
	}
	if j.ErrorCount >= maxRetries {
		goapp.Log.Info().Str("queue", j.Queue).Str("type", j.Type).Int32("errCount", j.ErrorCount).Msg("too many errors")
		return false
	}
	return true
}
