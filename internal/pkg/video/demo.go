package video

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/persistence"
	"github.com/prismwriting/prism/internal/pkg/status"
)

type jobsResult struct {
	Success   bool               `json:"success"`
	TotalJobs int                `json:"totalJobs"`
	Jobs      []*persistence.Job `json:"jobs"`
}

func newDemoJob(id, project, step string, duration int, size int64, now time.Time) *persistence.Job {
	return &persistence.Job{ID: id, ProjectID: project, UserID: tempID, Status: status.Uploaded.String(),
		CurrentStep: step, Created: now,
		Video: persistence.VideoFile{ID: uuid.New().String(), FileName: "demo-video.mp4", FileSize: size,
			MimeType: "video/mp4", Duration: duration, UploadedAt: now}}
}

func createDemo(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		job := newDemoJob(uuid.New().String(), "demo-project", "Demo video ready for processing", 180,
			25*1024*1024, time.Now())
		if err := data.Store.Set(c.Request().Context(), job.ID, job); err != nil {
			return api.ErrInternal("Failed to create demo job", err)
		}
		return c.JSON(http.StatusOK, &result{Success: true, JobID: job.ID, Message: "Demo job created successfully", Job: job})
	}
}

func listJobs(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		jobs, err := data.Store.GetAll(c.Request().Context())
		if err != nil {
			return api.ErrInternal("Failed to load jobs", err)
		}
		if jobs == nil {
			jobs = []*persistence.Job{}
		}
		return c.JSON(http.StatusOK, &jobsResult{Success: true, TotalJobs: len(jobs), Jobs: jobs})
	}
}

type checkResult struct {
	Success      bool     `json:"success"`
	Message      string   `json:"message,omitempty"`
	Error        string   `json:"error,omitempty"`
	TestResults  []string `json:"testResults"`
	TotalTests   int      `json:"totalTests"`
	PassedTests  int      `json:"passedTests"`
	FailedTests  int      `json:"failedTests"`
	SystemStatus string   `json:"systemStatus"`
}

// systemCheck runs a probe job through the store and the status steps
func systemCheck(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		res := &checkResult{}
		add := func(name string, ok bool) {
			res.TotalTests++
			if ok {
				res.PassedTests++
				res.TestResults = append(res.TestResults, name+": OK")
			} else {
				res.FailedTests++
				res.TestResults = append(res.TestResults, name+": FAILED")
			}
		}
		job := newDemoJob(uuid.New().String(), "test-project", "Test job created", 180, 25*1024*1024, time.Now())
		err := data.Store.Set(ctx, job.ID, job)
		got, gErr := data.Store.Get(ctx, job.ID)
		add("job store", err == nil && gErr == nil && got != nil && got.ID == job.ID)

		steps := []status.Status{status.Uploaded, status.Transcribing, status.ExtractingFrames, status.Analyzing,
			status.GeneratingDocument, status.Complete}
		for i, st := range steps {
			job.Status, job.Progress = st.String(), i*20
			if err == nil {
				err = data.Store.Set(ctx, job.ID, job)
			}
		}
		got, gErr = data.Store.Get(ctx, job.ID)
		add("processing pipeline", err == nil && gErr == nil && got != nil &&
			got.Status == status.Complete.String() && got.Progress == 100)

		deleted, err := data.Store.Delete(ctx, job.ID)
		has, hErr := data.Store.Has(ctx, job.ID)
		add("cleanup", err == nil && hErr == nil && deleted && !has)

		if res.FailedTests > 0 {
			res.Error, res.SystemStatus = "System check failed", "ERROR"
			return c.JSON(http.StatusInternalServerError, res)
		}
		res.Success, res.Message, res.SystemStatus = true, "System check completed successfully", "OPERATIONAL"
		return c.JSON(http.StatusOK, res)
	}
}
