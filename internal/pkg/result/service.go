package result

import (
	"context"
	"io"
	"io/fs"
	"log"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/facebookgo/grace/gracehttp"
	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

// FileReader loads file by name
type FileReader interface {
	LoadFile(ctx context.Context, name string) (io.ReadSeekCloser, error)
}

// JobLoader provides the job to find its files
type JobLoader interface {
	Get(ctx context.Context, id string) (*persistence.Job, error)
}

// Data keeps data required for service work
type Data struct {
	Port   int
	Reader FileReader
	Store  JobLoader
}

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Int("port", data.Port).Msg("Starting PRISM result service")

	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Minute

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Reader == nil {
		return errors.New("no file reader")
	}
	if data.Store == nil {
		return errors.New("no job store")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("prism_result", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.GET("/video/file/:id", download(data, videoFile))
	e.HEAD("/video/file/:id", download(data, videoFile))
	e.GET("/video/document/:id", download(data, documentFile))
	e.HEAD("/video/document/:id", download(data, documentFile))
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

// fileFunc selects the stored object of the job, "" if there is none
type fileFunc func(job *persistence.Job) string

func videoFile(job *persistence.Job) string {
	return job.Video.FileName
}

func documentFile(job *persistence.Job) string {
	if job.Document == nil {
		return ""
	}
	return job.Document.FileName
}

func download(data *Data, ff fileFunc) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("download method")()

		id := c.Param("id")
		job, err := data.Store.Get(c.Request().Context(), id)
		if err != nil {
			return api.ErrInternal("Can't get job", err)
		}
		if job == nil {
			return api.ErrNotFound("Job not found")
		}
		name := ff(job)
		if name == "" || path.Dir(name) != id {
			return api.ErrNotFound("File not found")
		}
		return serveFile(c, data, name)
	}
}

func serveFile(c echo.Context, data *Data, name string) error {
	goapp.Log.Info().Str("file", name).Msg("loading")
	file, err := data.Reader.LoadFile(c.Request().Context(), name)
	if err != nil {
		return fileErr(err, "Can't get file")
	}
	defer file.Close()
	stGetter, ok := file.(interface{ Stat() (fs.FileInfo, error) })
	if !ok {
		return api.ErrInternal("Can't get file stat", errors.New(`file does not implement "Stat() (fs.FileInfo, error)"`))
	}
	stat, err := stGetter.Stat()
	if err != nil {
		return fileErr(err, "Can't get file stat")
	}

	w := c.Response()
	w.Header().Set("Content-Disposition", "attachment; filename="+path.Base(name))
	http.ServeContent(w, c.Request(), path.Base(name), stat.ModTime(), file)
	return nil
}

func fileErr(err error, msg string) error {
	if isNotFound(err) {
		goapp.Log.Warn().Err(err).Send()
		return api.ErrNotFound("File not found")
	}
	return api.ErrInternal(msg, err)
}

func isNotFound(err error) bool {
	var errTest minio.ErrorResponse
	return errors.As(err, &errTest) && errTest.StatusCode == http.StatusNotFound
}
