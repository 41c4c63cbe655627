package portal

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prismwriting/prism/internal/pkg/api"
	"github.com/prismwriting/prism/internal/pkg/auth"
	"github.com/prismwriting/prism/internal/pkg/persistence"
)

// ProjectSubmitted is a status of a new project request
const ProjectSubmitted = "SUBMITTED"

type projectInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ServiceType string     `json:"serviceType"`
	WordCount   int        `json:"wordCount"`
	Deadline    *time.Time `json:"deadline"`
	Budget      string     `json:"budget"`
}

type projectResult struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Project *persistence.Project `json:"project"`
}

type projectsResult struct {
	Success  bool                   `json:"success"`
	Projects []*persistence.Project `json:"projects"`
}

func createProject(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		claims := auth.ClaimsFrom(c)
		var in projectInput
		if err := c.Bind(&in); err != nil {
			return api.ErrValidation("Invalid request body")
		}
		if missing := missingFields(map[string]string{"title": strings.TrimSpace(in.Title),
			"description": strings.TrimSpace(in.Description), "serviceType": in.ServiceType},
			"title", "description", "serviceType"); len(missing) > 0 {
			return api.ErrValidation("Missing required fields", missing...)
		}
		if in.WordCount < 0 {
			return api.ErrValidation("Invalid word count", "wordCount")
		}
		p := &persistence.Project{ID: uuid.New().String(), UserID: claims.UserID, Title: in.Title,
			Description: in.Description, ServiceType: in.ServiceType, WordCount: in.WordCount,
			Deadline: in.Deadline, Budget: in.Budget, Status: ProjectSubmitted, Created: time.Now()}
		if err := data.DB.InsertProject(c.Request().Context(), p); err != nil {
			return api.ErrInternal("Failed to create project", err)
		}
		audit(c, data, auditProjectCreated, claims.UserID, p.ID, "create", nil)
		return c.JSON(http.StatusCreated, &projectResult{Success: true, Message: "Project created successfully", Project: p})
	}
}

func listProjects(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		claims := auth.ClaimsFrom(c)
		res, err := data.DB.ListProjects(c.Request().Context(), claims.UserID)
		if err != nil {
			return api.ErrInternal("Failed to load projects", err)
		}
		if res == nil {
			res = []*persistence.Project{}
		}
		return c.JSON(http.StatusOK, &projectsResult{Success: true, Projects: res})
	}
}
