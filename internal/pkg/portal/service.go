package portal

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/pkg/errors"

	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/auth"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/utils/handler"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DB persists portal entities
type DB interface {
	InsertQuote(ctx context.Context, q *persistence.Quote) error
	LoadQuote(ctx context.Context, id string) (*persistence.Quote, error)

	InsertLead(ctx context.Context, l *persistence.Lead) error
	ListLeads(ctx context.Context, f persistence.LeadFilter) ([]*persistence.Lead, int, error)
	UpdateLead(ctx context.Context, id string, u *persistence.LeadUpdate, now time.Time) (*persistence.Lead, error)

	InsertSubscriber(ctx context.Context, s *persistence.Subscriber) error
	ResubscribeSubscriber(ctx context.Context, s *persistence.Subscriber) (*persistence.Subscriber, error)
	LoadSubscriberByEmail(ctx context.Context, email string) (*persistence.Subscriber, error)
	ConfirmSubscriber(ctx context.Context, token string, now time.Time) (*persistence.Subscriber, error)
	Unsubscribe(ctx context.Context, token string, now time.Time) (*persistence.Subscriber, error)
	ListSubscribers(ctx context.Context, page, limit int) ([]*persistence.Subscriber, int, error)
	SubscriberStats(ctx context.Context) (*persistence.SubscriberStats, error)

	InsertUser(ctx context.Context, u *persistence.User) error
	LoadUserByEmail(ctx context.Context, email string) (*persistence.User, error)
	LoadUser(ctx context.Context, id string) (*persistence.User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	ListUsers(ctx context.Context, page, limit int) ([]*persistence.User, int, error)

	InsertProject(ctx context.Context, p *persistence.Project) error
	ListProjects(ctx context.Context, userID string) ([]*persistence.Project, error)

	InsertAudit(ctx context.Context, e *persistence.AuditEvent) error
	ListAudit(ctx context.Context, f persistence.AuditFilter) ([]*persistence.AuditEvent, error)
}

// RefreshStore keeps refresh tokens
type RefreshStore interface {
	Save(ctx context.Context, token, userID string) error
	Take(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, token string) error
}

// Data keeps data required for service work
type Data struct {
	Port          int
	DB            DB
	Tokens        *auth.Tokens
	Refresh       RefreshStore
	RefreshTTL    time.Duration
	MsgSender     handler.MsgSender
	SecureCookies bool
	DoubleOptIn   bool
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP PRISM portal service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.DB == nil {
		return errors.New("no DB")
	}
	if data.Tokens == nil {
		return errors.New("no token issuer")
	}
	if data.Refresh == nil {
		return errors.New("no refresh token store")
	}
	if data.RefreshTTL <= 0 {
		return errors.Errorf("wrong refresh ttl %v", data.RefreshTTL)
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	return nil
}

const wordCountPath = "/translation-quote/word-count"

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("prism_portal", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler
	e.Use(middleware.Logger())
	e.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{Limit: "1M",
		Skipper: func(c echo.Context) bool { return c.Path() == wordCountPath }}))
	promMdlw.Use(e)

	e.POST("/translation-quote", createQuote(data))
	e.GET("/translation-quote", getQuote(data))
	e.POST(wordCountPath, wordCount(data), middleware.BodyLimit("21M"))

	e.POST("/auth/register", register(data))
	e.POST("/auth/login", login(data))
	e.POST("/auth/logout", logout(data))
	e.POST("/auth/refresh", refresh(data))
	authMdlw := auth.Middleware(data.Tokens)
	e.GET("/auth/me", me(data), authMdlw)

	e.POST("/newsletter", subscribe(data))
	e.GET("/newsletter/confirm/:token", confirm(data))
	e.GET("/newsletter/unsubscribe/:token", unsubscribe(data))

	e.POST("/contact", contact(data))

	pg := e.Group("/projects", authMdlw)
	pg.POST("", createProject(data))
	pg.GET("", listProjects(data))

	ag := e.Group("/admin", authMdlw, auth.RequireRole(auth.RoleAdmin))
	ag.GET("/leads", listLeads(data))
	ag.PATCH("/leads/:id", updateLead(data))
	ag.GET("/users", listUsers(data))
	ag.GET("/newsletter", listSubscribers(data))
	ag.GET("/audit", listAudit(data))

	e.GET("/live", live(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

func intParam(c echo.Context, name string, def int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return v
}
