package worker

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/prismwriting/prism/internal/pkg/jobstore"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/status"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/prismwriting/prism/internal/pkg/utils/handler"
	"github.com/vgarvardt/gue/v5"
)

// Filer saves generated documents
type Filer interface {
	SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error
}

// Analyzer makes the content analysis
type Analyzer interface {
	Analyze(ctx context.Context, tr *persistence.Transcription, frames []persistence.Frame) (*persistence.Analysis, error)
}

// ServiceData keeps data required for service work
type ServiceData struct {
	GueClient   *gue.Client
	WorkerCount int
	MsgSender   handler.MsgSender
	Store       jobstore.Store
	Filer       Filer
	Analyzer    Analyzer
	StepDelay   time.Duration
	Testing     bool

	now func() time.Time
}

// DocumentName is the generated document object name
const DocumentName = "document.md"

const maxRetries = 3

// StartWorkerService starts the event queue listener service to listen for events
// returns channel for tracking if all jobs are finished
func StartWorkerService(ctx context.Context, data *ServiceData) (chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	if data.GueClient == nil {
		return nil, fmt.Errorf("no gue client")
	}
	goapp.Log.Info().Int("workers", data.WorkerCount).Msg("Starting listen for messages")
	if data.Testing {
		goapp.Log.Warn().Msg("SERVICE IN TEST MODE")
	}

	pool, err := gue.NewWorkerPool(
		data.GueClient, WorkMap(data), data.WorkerCount,
		gue.WithPoolQueue(messages.Work),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter("worker")),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("video-worker"),
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

// PrepareLocal validates data and returns handlers for the in process pool,
// no gue client is required
func PrepareLocal(data *ServiceData) (gue.WorkMap, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	return WorkMap(data), nil
}

// WorkMap returns worker handlers, shared by the gue pool and the in process pool
func WorkMap(data *ServiceData) gue.WorkMap {
	if data.now == nil {
		data.now = time.Now
	}
	return gue.WorkMap{
		messages.Process: handler.Create(data, handleProcess, handler.DefaultOpts[messages.JobMessage]().
			WithFailure(failureHandler(data)).WithTimeout(time.Minute*30).
			WithBackoff(handler.DefaultBackoffOrTest(data.Testing))),
	}
}

func handleProcess(ctx context.Context, m *messages.JobMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Msg("handling process")
	job, err := data.Store.Get(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("can't load job: %w", err)
	}
	if job == nil {
		return utils.NewErrNonRetryable(fmt.Errorf("no job %s", m.ID))
	}
	if status.From(job.Status) == status.Complete {
		goapp.Log.Info().Str("ID", m.ID).Msg("already complete - skip")
		return nil
	}
	if err := sendInform(ctx, m, amessages.InformTypeStarted, data); err != nil {
		return err
	}
	now := data.now()
	job.Started, job.Error, job.Completed = &now, "", nil

	if err := update(ctx, m, job, status.Transcribing, 10, "Transcribing audio...", data); err != nil {
		return err
	}
	if err := wait(ctx, data.StepDelay); err != nil {
		return err
	}
	job.Transcription = transcribe(job)
	if err := update(ctx, m, job, status.Transcribing, 30, "Transcription complete", data); err != nil {
		return err
	}

	if err := update(ctx, m, job, status.ExtractingFrames, 30, "Extracting key frames...", data); err != nil {
		return err
	}
	if err := wait(ctx, data.StepDelay); err != nil {
		return err
	}
	job.Frames = extractFrames(job)
	if err := update(ctx, m, job, status.ExtractingFrames, 50, "Key frames extracted", data); err != nil {
		return err
	}

	if err := update(ctx, m, job, status.Analyzing, 50, "Analyzing content...", data); err != nil {
		return err
	}
	job.Analysis, err = data.Analyzer.Analyze(ctx, job.Transcription, job.Frames)
	if err != nil {
		return fmt.Errorf("can't analyze: %w", err)
	}
	if err := update(ctx, m, job, status.Analyzing, 70, "Content analyzed", data); err != nil {
		return err
	}

	if err := update(ctx, m, job, status.GeneratingDocument, 70, "Generating document...", data); err != nil {
		return err
	}
	if err := wait(ctx, data.StepDelay); err != nil {
		return err
	}
	doc := generateDocument(job, data.now())
	md := renderMarkdown(doc)
	if err := data.Filer.SaveFile(ctx, doc.FileName, strings.NewReader(md), int64(len(md))); err != nil {
		return fmt.Errorf("can't save document: %w", err)
	}
	job.Document = doc
	if err := update(ctx, m, job, status.GeneratingDocument, 90, "Document generated", data); err != nil {
		return err
	}

	completed := data.now()
	job.Completed = &completed
	if err := update(ctx, m, job, status.Complete, 100, "Processing complete", data); err != nil {
		return err
	}
	goapp.Log.Info().Str("ID", m.ID).Msg("Processing completed")
	return sendInform(ctx, m, amessages.InformTypeFinished, data)
}

// failureHandler marks the job failed when no retry is left
func failureHandler(data *ServiceData) handler.FailureFunc[messages.JobMessage] {
	return func(ctx context.Context, m *messages.JobMessage, err error, j *gue.Job) (bool, time.Duration, error) {
		if handler.ShouldRetry(err, j, maxRetries) {
			return true, 0, nil
		}
		return false, 0, markFailed(ctx, m, err, data)
	}
}

func markFailed(ctx context.Context, m *messages.JobMessage, err error, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Msg("mark failed")
	job, lErr := data.Store.Get(ctx, m.ID)
	if lErr != nil {
		return fmt.Errorf("can't load job: %w", lErr)
	}
	if job == nil {
		goapp.Log.Warn().Str("ID", m.ID).Msg("no job - skip failure")
		return nil
	}
	job.Error = err.Error()
	if uErr := update(ctx, m, job, status.Error, job.Progress, "Processing failed", data); uErr != nil {
		return uErr
	}
	return sendInform(ctx, m, amessages.InformTypeFailed, data)
}

func update(ctx context.Context, m *messages.JobMessage, job *persistence.Job, st status.Status, progress int,
	step string, data *ServiceData) error {
	job.Status, job.Progress, job.CurrentStep = st.String(), max(job.Progress, progress), step
	if err := data.Store.Set(ctx, job.ID, job); err != nil {
		return fmt.Errorf("can't save job: %w", err)
	}
	goapp.Log.Debug().Str("ID", job.ID).Str("status", job.Status).Int("progress", job.Progress).Msg("status")
	if err := data.MsgSender.SendMessage(ctx, messages.NewMessageFrom(m), messages.StatusChange); err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	return nil
}

func sendInform(ctx context.Context, m *messages.JobMessage, tp string, data *ServiceData) error {
	err := data.MsgSender.SendMessage(ctx, &amessages.InformMessage{
		QueueMessage: *amessages.NewQueueMessageFromM(&m.QueueMessage),
		Type:         tp, At: data.now()}, messages.Inform)
	if err != nil {
		return fmt.Errorf("can't send msg: %w", err)
	}
	return nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

func validate(data *ServiceData) error {
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	if data.Store == nil {
		return fmt.Errorf("no job store")
	}
	if data.Filer == nil {
		return fmt.Errorf("no Filer")
	}
	if data.Analyzer == nil {
		return fmt.Errorf("no Analyzer")
	}
	return nil
}
