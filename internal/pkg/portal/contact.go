package portal

import (
	"net/http"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

// Lead statuses
const (
	LeadNew               = "NEW"
	LeadContacted         = "CONTACTED"
	LeadQualified         = "QUALIFIED"
	LeadProposalSent      = "PROPOSAL_SENT"
	LeadConverted         = "CONVERTED"
	LeadClosedLost        = "CLOSED_LOST"
	LeadFollowUpScheduled = "FOLLOW_UP_SCHEDULED"
)

var (
	leadStatuses   = map[string]bool{LeadNew: true, LeadContacted: true, LeadQualified: true, LeadProposalSent: true, LeadConverted: true, LeadClosedLost: true, LeadFollowUpScheduled: true}
	leadPriorities = map[string]bool{"LOW": true, "MEDIUM": true, "HIGH": true, "URGENT": true}
)

type contactInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	Phone       string `json:"phone"`
	ProjectType string `json:"projectType"`
	Message     string `json:"message"`
	Budget      string `json:"budget"`
	Timeline    string `json:"timeline"`
	Newsletter  bool   `json:"newsletter"`
}

type contactResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	LeadID  string `json:"leadId"`
}

func contact(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("contact method")()
		ctx := c.Request().Context()
		var in contactInput
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		in.Email = normEmail(in.Email)
		if fields := checkContact(&in); len(fields) > 0 {
			return api.ErrValidation("Invalid contact data", fields...)
		}
		now := time.Now()
		l := &persistence.Lead{ID: uuid.New().String(), Name: strings.TrimSpace(in.Name), Email: in.Email,
			Company: in.Company, Phone: in.Phone, ProjectType: in.ProjectType, Message: in.Message,
			Budget: in.Budget, Timeline: in.Timeline, Status: LeadNew, Priority: "MEDIUM", Source: "contact-form",
			IPAddress: c.RealIP(), UserAgent: c.Request().UserAgent(), Created: now, Updated: now}
		if err := data.DB.InsertLead(ctx, l); err != nil {
			return api.ErrInternal("Failed to save inquiry", err)
		}
		goapp.Log.Info().Str("ID", l.ID).Msg("lead created")
		audit(c, data, auditLeadCreated, "", l.ID, "create", map[string]string{"source": l.Source})
		if in.Newsletter {
			optIn(c, data, in.Email)
		}
		return c.JSON(http.StatusOK, &contactResult{Success: true, LeadID: l.ID,
			Message: "Thank you for your inquiry! We will get back to you within 24 hours."})
	}
}

func checkContact(in *contactInput) []string {
	var res []string
	if strings.TrimSpace(in.Name) == "" {
		res = append(res, "name")
	}
	if !validEmail(in.Email) {
		res = append(res, "email")
	}
	if len(strings.TrimSpace(in.Message)) < 10 {
		res = append(res, "message")
	}
	return res
}

// optIn subscribes a contact form sender, the form consent counts as confirmation
func optIn(c echo.Context, data *Data, email string) {
	ctx := c.Request().Context()
	old, err := data.DB.LoadSubscriberByEmail(ctx, email)
	if err != nil {
		goapp.Log.Warn().Err(err).Msg("can't load subscriber")
		return
	}
	if old != nil && old.Unsubscribed == nil {
		return
	}
	s, err := newSubscriber(c, subscribeInput{Email: email, Consent: true, Source: "contact-form"}, true)
	if err != nil {
		goapp.Log.Warn().Err(err).Msg("can't create subscriber")
		return
	}
	if err := saveSubscriber(ctx, data, old, s); err != nil {
		goapp.Log.Warn().Err(err).Msg("can't save subscriber")
	}
}
