package statusservice

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

// JobLoader loads jobs
type JobLoader interface {
	Get(ctx context.Context, id string) (*persistence.Job, error)
}

// WSConnHandler WebSocket connection wrapper
type WSConnHandler interface {
	HandleConnection(WsConn) error
	GetConnections(id string) ([]WsConn, bool)
}

// Data keeps data required for service work
type Data struct {
	Port      int
	Store     JobLoader
	WSHandler WSConnHandler
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP PRISM status service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 10 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("prism_status", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.GET("/status/:id", statusHandler(data))
	e.GET("/live", live(data))
	e.GET("/subscribe", subscribeHandler(data))

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

type result struct {
	ID          string           `json:"id"`
	Status      string           `json:"status"`
	Progress    int              `json:"progress"`
	CurrentStep string           `json:"currentStep,omitempty"`
	Error       string           `json:"error,omitempty"`
	Job         *persistence.Job `json:"job,omitempty"`
}

func statusHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("status method")()

		id := c.Param("id")
		job, err := data.Store.Get(c.Request().Context(), id)
		if err != nil {
			return api.ErrInternal("Failed to get job status", err)
		}
		if job == nil {
			return api.ErrNotFound("Job not found")
		}
		return c.JSON(http.StatusOK, mapJob(job))
	}
}

func validate(data *Data) error {
	if data.Store == nil {
		return fmt.Errorf("no job store")
	}
	if data.WSHandler == nil {
		return fmt.Errorf("no WSHandler")
	}
	return nil
}

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	}}

func subscribeHandler(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ws, err := wsUpgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return err
		}
		defer ws.Close()

		return data.WSHandler.HandleConnection(ws)
	}
}
