package inform

import (
	"context"
	"fmt"
	"time"

	"github.com/airenas/async-api/pkg/inform"
	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/jordan-wright/email"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/prismwriting/prism/internal/pkg/utils/handler"
	"github.com/vgarvardt/gue/v5"
)

// Sender send emails
type Sender interface {
	Send(email *email.Email) error
}

// EmailMaker prepares the job status email
type EmailMaker interface {
	Make(data *inform.Data) (*email.Email, error)
}

// MailMaker prepares quote and newsletter emails
type MailMaker interface {
	Make(m *messages.MailMessage) (*email.Email, error)
}

// DB tracks email sending process
// It is used to guarantee not to send the emails twice
type DB interface {
	LockEmailTable(context.Context, string, string) error
	UnLockEmailTable(context.Context, string, string, *int) error
}

// JobLoader provides the job owner email
type JobLoader interface {
	Get(ctx context.Context, id string) (*persistence.Job, error)
}

// ServiceData keeps data required for service work
type ServiceData struct {
	GueClient   *gue.Client
	WorkerCount int
	EmailSender Sender
	EmailMaker  EmailMaker
	MailMaker   MailMaker
	DB          DB
	Store       JobLoader
	Location    *time.Location
}

// StartWorkerService starts the event queue listener service to listen for inform events
// returns channel for tracking when all jobs are finished
func StartWorkerService(ctx context.Context, data *ServiceData) (chan struct{}, error) {
	if err := validate(data); err != nil {
		return nil, err
	}
	if data.GueClient == nil {
		return nil, fmt.Errorf("no gue client")
	}
	goapp.Log.Info().Msg("Starting listen for messages")

	pool, err := gue.NewWorkerPool(
		data.GueClient, WorkMap(data), data.WorkerCount,
		gue.WithPoolQueue(messages.Inform),
		gue.WithPoolLogger(utils.NewGueLoggerAdapter("inform")),
		gue.WithPoolPollInterval(500*time.Millisecond),
		gue.WithPoolPollStrategy(gue.RunAtPollStrategy),
		gue.WithPoolID("prism-inform"),
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

// WorkMap returns inform handlers
func WorkMap(data *ServiceData) gue.WorkMap {
	return gue.WorkMap{
		messages.Inform: handler.Create(data, handleInform, handler.DefaultOpts[amessages.InformMessage]().WithTimeout(time.Minute)),
		messages.Mail:   handler.Create(data, handleMail, handler.DefaultOpts[messages.MailMessage]().WithTimeout(time.Minute)),
	}
}

func handleInform(ctx context.Context, m *amessages.InformMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Str("type", m.Type).Msg("handling")

	job, err := data.Store.Get(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("can't load job: %w", err)
	}
	if job == nil || job.Email == "" {
		goapp.Log.Info().Str("ID", m.ID).Msg("No email, skip")
		return nil
	}

	mailData := inform.Data{}
	mailData.ID = m.ID
	mailData.MsgTime = toLocalTime(data, m.At)
	mailData.MsgType = m.Type
	mailData.Email = job.Email

	email, err := data.EmailMaker.Make(&mailData)
	if err != nil {
		return fmt.Errorf("can't prepare email: %w", err)
	}

	err = data.DB.LockEmailTable(ctx, mailData.ID, mailData.MsgType)
	if err != nil {
		return fmt.Errorf("can't lock mail table: %w", err)
	}
	var unlockValue = 0
	defer func() {
		if err := data.DB.UnLockEmailTable(ctx, mailData.ID, mailData.MsgType, &unlockValue); err != nil {
			goapp.Log.Error().Err(err).Str("ID", mailData.ID).Msg("can't unlock mail table")
		}
	}()

	err = data.EmailSender.Send(email)
	if err != nil {
		return fmt.Errorf("can't send email: %w", err)
	}
	unlockValue = 2
	return nil
}

func handleMail(ctx context.Context, m *messages.MailMessage, data *ServiceData) error {
	goapp.Log.Info().Str("ID", m.ID).Str("kind", m.Kind).Msg("handling mail")
	if m.Email == "" {
		return utils.NewErrNonRetryable(fmt.Errorf("no email"))
	}
	email, err := data.MailMaker.Make(m)
	if err != nil {
		return utils.NewErrNonRetryable(fmt.Errorf("can't prepare email: %w", err))
	}
	if err := data.EmailSender.Send(email); err != nil {
		return fmt.Errorf("can't send email: %w", err)
	}
	return nil
}

func validate(data *ServiceData) error {
	if data.WorkerCount < 1 {
		return fmt.Errorf("no worker count provided")
	}
	if data.EmailMaker == nil {
		return fmt.Errorf("no EmailMaker")
	}
	if data.MailMaker == nil {
		return fmt.Errorf("no MailMaker")
	}
	if data.EmailSender == nil {
		return fmt.Errorf("no EmailSender")
	}
	if data.DB == nil {
		return fmt.Errorf("no DB")
	}
	if data.Store == nil {
		return fmt.Errorf("no job store")
	}
	return nil
}

func toLocalTime(data *ServiceData, t time.Time) time.Time {
	if data.Location != nil {
		return t.In(data.Location)
	}
	return t
}
