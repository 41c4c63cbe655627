package portal

import (
	"context"
	"errors"
	"net/http"
	"time"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/auth"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

type subscribeInput struct {
	Email   string `json:"email"`
	Consent bool   `json:"consent"`
	Source  string `json:"source"`
}

type subscribeResult struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Confirmed    bool   `json:"confirmed"`
	NeedsConfirm bool   `json:"requiresConfirmation,omitempty"`
	SubscriberID string `json:"subscriberId,omitempty"`
}

func subscribe(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("subscribe method")()
		ctx := c.Request().Context()
		var in subscribeInput
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		in.Email = normEmail(in.Email)
		if !validEmail(in.Email) {
			return api.ErrValidation("Invalid email address", "email")
		}
		if !in.Consent {
			return api.ErrValidation("You must consent to receive emails", "consent")
		}
		old, err := data.DB.LoadSubscriberByEmail(ctx, in.Email)
		if err != nil {
			return api.ErrInternal("Failed to subscribe", err)
		}
		if old != nil && old.Unsubscribed == nil {
			if old.Confirmed {
				return c.JSON(http.StatusOK, &subscribeResult{Success: true, Confirmed: true, SubscriberID: old.ID,
					Message: "You are already subscribed to our newsletter!"})
			}
			sendConfirm(c, data, old)
			return c.JSON(http.StatusOK, &subscribeResult{Success: true, NeedsConfirm: true, SubscriberID: old.ID,
				Message: "A confirmation email has been sent. Please check your inbox."})
		}
		s, err := newSubscriber(c, in, !data.DoubleOptIn)
		if err != nil {
			return err
		}
		if err := saveSubscriber(ctx, data, old, s); err != nil {
			if errors.Is(err, persistence.ErrDuplicate) {
				return api.ErrConflict("You are already subscribed to our newsletter!")
			}
			return api.ErrInternal("Failed to subscribe", err)
		}
		audit(c, data, auditNewsletterJoin, "", s.ID, "subscribe", map[string]string{"source": s.Source})
		if s.Confirmed {
			return c.JSON(http.StatusOK, &subscribeResult{Success: true, Confirmed: true, SubscriberID: s.ID,
				Message: "Successfully subscribed to our newsletter!"})
		}
		sendConfirm(c, data, s)
		return c.JSON(http.StatusOK, &subscribeResult{Success: true, NeedsConfirm: true, SubscriberID: s.ID,
			Message: "Thank you! Please check your email to confirm your subscription."})
	}
}

func newSubscriber(c echo.Context, in subscribeInput, confirmed bool) (*persistence.Subscriber, error) {
	ct, err := auth.NewToken()
	if err != nil {
		return nil, api.ErrInternal("Failed to subscribe", err)
	}
	ut, err := auth.NewToken()
	if err != nil {
		return nil, api.ErrInternal("Failed to subscribe", err)
	}
	now := time.Now()
	res := &persistence.Subscriber{ID: uuid.New().String(), Email: in.Email, Consent: in.Consent,
		Source: in.Source, Confirmed: confirmed, ConfirmationToken: ct, UnsubscribeToken: ut,
		IPAddress: c.RealIP(), UserAgent: c.Request().UserAgent(), Subscribed: now}
	if res.Source == "" {
		res.Source = "website"
	}
	if confirmed {
		res.ConfirmedAt = &now
	}
	return res, nil
}

// saveSubscriber inserts a new subscriber or reactivates the unsubscribed old one
func saveSubscriber(ctx context.Context, data *Data, old, s *persistence.Subscriber) error {
	if old == nil {
		return data.DB.InsertSubscriber(ctx, s)
	}
	s.ID = old.ID
	res, err := data.DB.ResubscribeSubscriber(ctx, s)
	if err != nil {
		return err
	}
	if res == nil {
		return persistence.ErrDuplicate
	}
	return nil
}

func sendConfirm(c echo.Context, data *Data, s *persistence.Subscriber) {
	if err := data.MsgSender.SendMessage(c.Request().Context(), &messages.MailMessage{
		QueueMessage: amessages.QueueMessage{ID: s.ID}, Kind: messages.MailNewsletterConfirm,
		Email: s.Email, Token: s.ConfirmationToken}, messages.Mail); err != nil {
		goapp.Log.Warn().Err(err).Str("ID", s.ID).Msg("can't send confirmation msg")
	}
}

func confirm(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		s, err := data.DB.ConfirmSubscriber(c.Request().Context(), c.Param("token"), time.Now())
		if err != nil {
			return api.ErrInternal("Failed to confirm", err)
		}
		if s == nil {
			return api.ErrNotFound("Invalid or expired confirmation link")
		}
		return c.JSON(http.StatusOK, &okResult{Success: true, Message: "Your subscription is confirmed. Thank you!"})
	}
}

func unsubscribe(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		s, err := data.DB.Unsubscribe(c.Request().Context(), c.Param("token"), time.Now())
		if err != nil {
			return api.ErrInternal("Failed to unsubscribe", err)
		}
		if s == nil {
			return api.ErrNotFound("Invalid unsubscribe link")
		}
		audit(c, data, auditNewsletterLeave, "", s.ID, "unsubscribe", nil)
		return c.JSON(http.StatusOK, &okResult{Success: true, Message: "You have been unsubscribed."})
	}
}
