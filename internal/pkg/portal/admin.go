package portal

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/auth"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

type pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type leadsResult struct {
	Success    bool                `json:"success"`
	Leads      []*persistence.Lead `json:"leads"`
	Pagination pagination          `json:"pagination"`
}

type leadResult struct {
	Success bool              `json:"success"`
	Lead    *persistence.Lead `json:"lead"`
}

type usersResult struct {
	Success    bool                `json:"success"`
	Users      []*persistence.User `json:"users"`
	Pagination pagination          `json:"pagination"`
}

type subscribersResult struct {
	Success     bool                         `json:"success"`
	Subscribers []*persistence.Subscriber    `json:"subscribers"`
	Stats       *persistence.SubscriberStats `json:"stats"`
	Pagination  pagination                   `json:"pagination"`
}

type auditResult struct {
	Success bool                      `json:"success"`
	Events  []*persistence.AuditEvent `json:"events"`
}

func listLeads(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		f := persistence.LeadFilter{Status: c.QueryParam("status"), Priority: c.QueryParam("priority"),
			Search: c.QueryParam("search"), Page: intParam(c, "page", 1), Limit: intParam(c, "limit", 20)}
		if f.Status != "" && !leadStatuses[f.Status] {
			return api.ErrValidation("Invalid status", "status")
		}
		if f.Priority != "" && !leadPriorities[f.Priority] {
			return api.ErrValidation("Invalid priority", "priority")
		}
		res, total, err := data.DB.ListLeads(c.Request().Context(), f)
		if err != nil {
			return api.ErrInternal("Failed to load leads", err)
		}
		if res == nil {
			res = []*persistence.Lead{}
		}
		return c.JSON(http.StatusOK, &leadsResult{Success: true, Leads: res,
			Pagination: pagination{Page: f.Page, Limit: f.Limit, Total: total}})
	}
}

func updateLead(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		var in persistence.LeadUpdate
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		if in.Status != nil && !leadStatuses[*in.Status] {
			return api.ErrValidation("Invalid status", "status")
		}
		if in.Priority != nil && !leadPriorities[*in.Priority] {
			return api.ErrValidation("Invalid priority", "priority")
		}
		if in.Status == nil && in.Priority == nil && in.Notes == nil && in.AssignedTo == nil {
			return api.ErrValidation("Nothing to update")
		}
		id := c.Param("id")
		l, err := data.DB.UpdateLead(c.Request().Context(), id, &in, time.Now())
		if err != nil {
			return api.ErrInternal("Failed to update lead", err)
		}
		if l == nil {
			return api.ErrNotFound("Lead not found")
		}
		audit(c, data, auditLeadUpdated, auth.ClaimsFrom(c).UserID, l.ID, "update", &in)
		return c.JSON(http.StatusOK, &leadResult{Success: true, Lead: l})
	}
}

func listUsers(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		page, limit := intParam(c, "page", 1), intParam(c, "limit", 20)
		res, total, err := data.DB.ListUsers(c.Request().Context(), page, limit)
		if err != nil {
			return api.ErrInternal("Failed to load users", err)
		}
		if res == nil {
			res = []*persistence.User{}
		}
		return c.JSON(http.StatusOK, &usersResult{Success: true, Users: res,
			Pagination: pagination{Page: page, Limit: limit, Total: total}})
	}
}

func listSubscribers(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		page, limit := intParam(c, "page", 1), intParam(c, "limit", 20)
		res, total, err := data.DB.ListSubscribers(ctx, page, limit)
		if err != nil {
			return api.ErrInternal("Failed to load subscribers", err)
		}
		stats, err := data.DB.SubscriberStats(ctx)
		if err != nil {
			return api.ErrInternal("Failed to load subscribers", err)
		}
		if res == nil {
			res = []*persistence.Subscriber{}
		}
		return c.JSON(http.StatusOK, &subscribersResult{Success: true, Subscribers: res, Stats: stats,
			Pagination: pagination{Page: page, Limit: limit, Total: total}})
	}
}

func listAudit(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		f := persistence.AuditFilter{EventType: c.QueryParam("eventType"), UserID: c.QueryParam("userId"),
			Limit: intParam(c, "limit", 100)}
		var err error
		if f.From, err = timeParam(c, "from"); err != nil {
			return api.ErrValidation("Invalid from date", "from")
		}
		if f.To, err = timeParam(c, "to"); err != nil {
			return api.ErrValidation("Invalid to date", "to")
		}
		res, err := data.DB.ListAudit(c.Request().Context(), f)
		if err != nil {
			return api.ErrInternal("Failed to load audit", err)
		}
		if res == nil {
			res = []*persistence.AuditEvent{}
		}
		return c.JSON(http.StatusOK, &auditResult{Success: true, Events: res})
	}
}

func timeParam(c echo.Context, name string) (time.Time, error) {
	v := c.QueryParam(name)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, v)
}
