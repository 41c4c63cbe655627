package video

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	amessages "github.com/airenas/async-api/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/jobstore"
	"github.com/prismwriting/prism/internal/pkg/messages"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/status"
	"github.com/prismwriting/prism/internal/pkg/utils"
	"github.com/prismwriting/prism/internal/pkg/utils/handler"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// FileSaver provides save file functionality
type FileSaver interface {
	SaveFile(ctx context.Context, name string, r io.Reader, fileSize int64) error
}

// Presigner creates direct upload URLs
type Presigner interface {
	PresignPut(ctx context.Context, name string) (string, error)
}

// Data keeps data required for service work
type Data struct {
	Port      int
	Saver     FileSaver
	Presigner Presigner
	Store     jobstore.Store
	MsgSender handler.MsgSender
}

const (
	prmVideo     = "video"
	prmEmail     = "email"
	prmProjectID = "projectId"
	tempID       = "temp"
)

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP PRISM video service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 180 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.Saver == nil {
		return errors.New("no file saver")
	}
	if data.Store == nil {
		return errors.New("no job store")
	}
	if data.MsgSender == nil {
		return fmt.Errorf("no msg sender")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("prism_video", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = api.ErrorHandler
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.POST("/video/upload", upload(data), middleware.BodyLimit(strconv.Itoa(utils.MaxVideoSize/1024/1024+1)+"M"))
	if data.Presigner != nil {
		e.POST("/video/upload-url", uploadURL(data))
	}
	e.POST("/video/demo", createDemo(data))
	e.GET("/video/demo", listJobs(data))
	e.POST("/video/process", process(data))
	e.GET("/video/status/:id", jobStatus(data))
	e.GET("/video/system-check", systemCheck(data))
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

type result struct {
	Success bool             `json:"success"`
	JobID   string           `json:"jobId"`
	Message string           `json:"message,omitempty"`
	Job     *persistence.Job `json:"job,omitempty"`
}

func upload(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("upload method")()
		ctx := c.Request().Context()

		form, err := c.MultipartForm()
		if err != nil {
			return api.ErrValidation("No multipart form data")
		}
		defer cleanFiles(form)

		fh := takeFirst(form.File[prmVideo], nil)
		if fh == nil {
			return api.ErrValidation("No video file provided", prmVideo)
		}
		mimeType := fh.Header.Get(echo.HeaderContentType)
		if !utils.SupportVideoType(mimeType) {
			return api.ErrValidation("Invalid file type. Please upload MP4, MOV, AVI, or WebM files.", prmVideo)
		}
		if fh.Size > utils.MaxVideoSize {
			return api.ErrValidation("File too large. Maximum size is 500MB.", prmVideo)
		}
		id := uuid.New().String()
		fn, err := utils.MakeValidateFileName(id, fh.Filename)
		if err != nil {
			return api.ErrValidation("Wrong file name", prmVideo)
		}
		f, err := fh.Open()
		if err != nil {
			return api.ErrValidation("Can't read video file", prmVideo)
		}
		defer f.Close()
		if err := data.Saver.SaveFile(ctx, fn, f, fh.Size); err != nil {
			return api.ErrInternal("Failed to upload video", err)
		}
		now := time.Now()
		job := &persistence.Job{ID: id, ProjectID: valueOr(takeFirst(form.Value[prmProjectID], ""), tempID),
			UserID: tempID, Email: takeFirst(form.Value[prmEmail], ""), Status: status.Uploaded.String(),
			CurrentStep: "Video uploaded successfully", Created: now,
			Video: persistence.VideoFile{ID: uuid.New().String(), FileName: fn, FileSize: fh.Size,
				MimeType: mimeType, URL: "/video/file/" + id, UploadedAt: now}}
		if err := data.Store.Set(ctx, id, job); err != nil {
			return api.ErrInternal("Failed to upload video", err)
		}
		goapp.Log.Info().Str("ID", id).Str("file", fn).Int64("size", fh.Size).Msg("uploaded")
		return c.JSON(http.StatusOK, &result{Success: true, JobID: id, Message: "Video uploaded successfully"})
	}
}

type uploadURLInput struct {
	FileName string `json:"fileName"`
	FileSize int64  `json:"fileSize"`
	MimeType string `json:"mimeType"`
	Email    string `json:"email"`
}

type uploadURLResult struct {
	Success   bool   `json:"success"`
	UploadURL string `json:"uploadUrl"`
	JobID     string `json:"jobId"`
	VideoID   string `json:"videoId"`
}

func uploadURL(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		var in uploadURLInput
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		if !utils.SupportVideoType(in.MimeType) {
			return api.ErrValidation("Invalid file type. Only video files are allowed.", "mimeType")
		}
		if in.FileSize <= 0 || in.FileSize > utils.MaxVideoSize {
			return api.ErrValidation("File too large. Maximum size is 500MB.", "fileSize")
		}
		if in.FileName == "" {
			return api.ErrValidation("No file name", "fileName")
		}
		id, videoID := uuid.New().String(), uuid.New().String()
		fn := utils.MakeFileName(id, videoID+utils.VideoExt(in.MimeType))
		u, err := data.Presigner.PresignPut(ctx, fn)
		if err != nil {
			return api.ErrUpstream("Failed to create upload URL", err)
		}
		now := time.Now()
		job := &persistence.Job{ID: id, ProjectID: tempID, UserID: tempID, Email: in.Email,
			Status: status.Pending.String(), CurrentStep: "Waiting for upload...", Created: now,
			Video: persistence.VideoFile{ID: videoID, FileName: fn, FileSize: in.FileSize, MimeType: in.MimeType,
				URL: "/video/file/" + id, UploadedAt: now}}
		if err := data.Store.Set(ctx, id, job); err != nil {
			return api.ErrInternal("Failed to create upload URL", err)
		}
		return c.JSON(http.StatusOK, &uploadURLResult{Success: true, UploadURL: u, JobID: id, VideoID: videoID})
	}
}

type processInput struct {
	JobID string `json:"jobId"`
}

func process(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("process method")()
		ctx := c.Request().Context()
		var in processInput
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		if in.JobID == "" {
			return api.ErrValidation("Job ID is required", "jobId")
		}
		job, err := data.Store.Get(ctx, in.JobID)
		if err != nil {
			return api.ErrInternal("Failed to start processing", err)
		}
		if job == nil {
			job = newDemoJob(in.JobID, tempID, "Ready to process", 300, 50*1024*1024, time.Now())
			if err := data.Store.Set(ctx, job.ID, job); err != nil {
				return api.ErrInternal("Failed to start processing", err)
			}
			goapp.Log.Info().Str("ID", job.ID).Msg("created demo job")
		}
		if status.From(job.Status).IsWorking() {
			return api.ErrValidation("Job is already processing or complete")
		}
		prev := *job
		job.Status, job.Progress, job.CurrentStep, job.Error = status.Transcribing.String(), 0, "Queued", ""
		if err := data.Store.Set(ctx, job.ID, job); err != nil {
			return api.ErrInternal("Failed to start processing", err)
		}
		if err := data.MsgSender.SendMessage(ctx, &messages.JobMessage{QueueMessage: amessages.QueueMessage{ID: job.ID},
			UserID: job.UserID}, messages.Process); err != nil {
			if sErr := data.Store.Set(ctx, prev.ID, &prev); sErr != nil {
				goapp.Log.Error().Err(sErr).Str("ID", prev.ID).Msg("can't restore job")
			}
			return api.ErrInternal("Failed to start processing", err)
		}
		return c.JSON(http.StatusOK, &result{Success: true, JobID: job.ID, Message: "Processing started"})
	}
}

func jobStatus(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		id := c.Param("id")
		job, err := data.Store.Get(c.Request().Context(), id)
		if err != nil {
			return api.ErrInternal("Failed to load job", err)
		}
		if job == nil {
			return api.ErrNotFound("Job not found")
		}
		return c.JSON(http.StatusOK, &result{Success: true, JobID: job.ID, Job: job})
	}
}

func takeFirst[K interface{}](a []K, d K) K {
	if len(a) > 0 {
		return a[0]
	}
	return d
}

func valueOr(v, d string) string {
	if v == "" {
		return d
	}
	return v
}

func cleanFiles(f *multipart.Form) {
	if f != nil {
		_ = f.RemoveAll()
	}
}
