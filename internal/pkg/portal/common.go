package portal

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func validEmail(s string) bool {
	return emailRegex.MatchString(s)
}

func normEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type okResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

const (
	auditUserRegistered  = "USER_REGISTERED"
	auditUserLogin       = "USER_LOGIN"
	auditLoginFailed     = "LOGIN_FAILED"
	auditUserLogout      = "USER_LOGOUT"
	auditLeadCreated     = "LEAD_CREATED"
	auditLeadUpdated     = "LEAD_UPDATED"
	auditProjectCreated  = "PROJECT_CREATED"
	auditQuoteCreated    = "QUOTE_CREATED"
	auditNewsletterJoin  = "NEWSLETTER_SUBSCRIBED"
	auditNewsletterLeave = "NEWSLETTER_UNSUBSCRIBED"
)

// audit never fails the request, a lost event is only logged
func audit(c echo.Context, data *Data, eventType, userID, resource, action string, details any) {
	e := &persistence.AuditEvent{ID: uuid.New().String(), EventType: eventType, UserID: userID,
		Resource: resource, Action: action, IPAddress: c.RealIP(), Created: time.Now()}
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			goapp.Log.Warn().Err(err).Str("event", eventType).Msg("can't marshal audit details")
		} else {
			e.Details = b
		}
	}
	if err := data.DB.InsertAudit(c.Request().Context(), e); err != nil {
		goapp.Log.Warn().Err(err).Str("event", eventType).Msg("can't save audit event")
	}
}
