package statusservice

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/prismwriting/prism/internal/pkg/utils/handler"
	"github.com/vgarvardt/gue/v5"
)

// HandlerData keeps data required for handler
type HandlerData struct {
	GueClient   *gue.Client
	WorkerCount int
	Store       JobLoader
	WSHandler   WSConnHandler
}

// StartStatusHandler starts the event queue listener for status events
// returns channel for tracking if all jobs are finished
func StartStatusHandler(ctx context.Context, data *HandlerData) (chan struct{}, error) {
	if err := validateHandler(data); err != nil {
		return nil, err
	}
	if data.GueClient == nil {
		return nil, fmt.Errorf("no gue client")
	}
	goapp.Log.Info().Msg("Starting listen for messages")

	pool, err := gue.NewWorkerPool(
		data.GueClient, WorkMap(data), data.WorkerCount,
		gue.WithPoolQueue(messages.StatusChange),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter("status")),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("status-worker"),
	)
	if err != nil {
		return nil, fmt.Errorf("could not build gue workers pool: %w", err)
	}
	res := make(chan struct{}, 1)
	go func() {
		goapp.Log.Info().Msg("Starting workers")
		if err := pool.Run(ctx); err != nil {
			goapp.Log.Error().Err(err).Msg("pool error")
		}
		goapp.Log.Info().Msg("Pool workers finished")
		res <- struct{}{}
	}()
	return res, nil
}

// WorkMap returns status change handlers
func WorkMap(data *HandlerData) gue.WorkMap {
	return gue.WorkMap{
		messages.StatusChange: handler.Create(data, handleStatus, handler.DefaultOpts[messages.JobMessage]().
			WithTimeout(time.Second*30)),
	}
}

func handleStatus(ctx context.Context, m *messages.JobMessage, data *HandlerData) error {
	goapp.Log.Info().Str("ID", m.ID).Msg("handling status change event")

	conns, found := data.WSHandler.GetConnections(m.ID)
	if !found {
		goapp.Log.Debug().Str("ID", m.ID).Msg("no connections found")
		return nil
	}
	job, err := data.Store.Get(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("cannot get job %s: %w", m.ID, err)
	}
	if job == nil {
		return utils.NewErrNonRetryable(fmt.Errorf("no job %s", m.ID))
	}
	res := mapJob(job)
	for _, c := range conns {
		if err := sendMsg(c, res); err != nil {
			goapp.Log.Error().Err(err).Send()
		}
	}
	return nil
}

func mapJob(job *persistence.Job) *result {
	return &result{ID: job.ID, Status: job.Status, Progress: job.Progress, CurrentStep: job.CurrentStep,
		Error: job.Error, Job: job}
}

func sendMsg(c WsConn, res *result) error {
	goapp.Log.Debug().Str("ID", res.ID).Msg("Sending result to websocket")
	if err := c.WriteJSON(res); err != nil {
		return fmt.Errorf("cannot write to websocket: %w", err)
	}
	return nil
}

func validateHandler(data *HandlerData) error {
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.Store == nil {
		return fmt.Errorf("no job store")
	}
	if data.WSHandler == nil {
		return fmt.Errorf("no WSHandler")
	}
	return nil
}
