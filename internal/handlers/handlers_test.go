package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"

	"jobtracker_backend/internal/middleware"
	"jobtracker_backend/internal/models"
	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/internal/validator"
	"jobtracker_backend/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Fakes embed the service interface; calling an unimplemented method panics.
type fakeJobs struct {
	services.JobService
	created *dto.CreateJobRequest
	deleted struct {
		id        string
		permanent bool
	}
}

func (f *fakeJobs) CreateJob(_ context.Context, _ *gorm.DB, userID string, req *dto.CreateJobRequest) (*dto.JobResponse, error) {
	f.created = req
	job := models.JobApplication{UserID: userID, JobTitle: req.JobTitle, Company: req.Company, Status: models.StatusWishlist}
	job.ID = "job-1"
	return &dto.JobResponse{JobApplication: job}, nil
}

func (f *fakeJobs) GetJob(_ context.Context, _ *gorm.DB, _, jobID string) (*dto.JobResponse, error) {
	return nil, apperrors.ErrJobNotFound
}

func (f *fakeJobs) DeleteJob(_ context.Context, _ *gorm.DB, _, jobID string, permanent bool) error {
	f.deleted.id = jobID
	f.deleted.permanent = permanent
	return nil
}

func (f *fakeJobs) ExportCSV(_ context.Context, _ *gorm.DB, _ string) ([]byte, error) {
	return []byte("Company,Job Title\nAcme,Engineer\n"), nil
}

type fakeResumes struct {
	services.ResumeService
}

func (f *fakeResumes) GetShared(_ context.Context, _ *gorm.DB, token string) (*models.Resume, error) {
	if token != "tok" {
		return nil, apperrors.ErrResumeNotFound
	}
	r := &models.Resume{Title: "Public resume", IsPublic: true}
	r.ID = "resume-1"
	return r, nil
}

func (f *fakeResumes) DownloadPDF(_ context.Context, _ *gorm.DB, _, _ string) (io.ReadCloser, string, error) {
	return io.NopCloser(strings.NewReader("%PDF-1.7")), "resume.pdf", nil
}

type fakeReminders struct {
	services.ReminderService
	hours int
}

func (f *fakeReminders) Upcoming(_ context.Context, _ *gorm.DB, _ string, hours int) ([]dto.ReminderResponse, error) {
	f.hours = hours
	return []dto.ReminderResponse{}, nil
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

func fakeAuth(c *gin.Context) {
	if c.GetHeader("Authorization") == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Missing authorization header"))
		return
	}
	c.Set("userID", "user-1")
	c.Next()
}

func newTestRouter(t *testing.T, svc *services.ServiceContainer) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{})
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.DBMiddleware(db))
	h := NewAppHandlers(svc, validator.New(), Guards{Auth: fakeAuth}, false)
	api := r.Group("/api/v1")
	h.JobHandler.RegisterRoutes(api)
	h.ResumeHandler.RegisterRoutes(api)
	h.ReminderHandler.RegisterRoutes(api)
	return r
}

func do(r http.Handler, method, path, body string, authed bool) (*httptest.ResponseRecorder, envelope) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set("Authorization", "Bearer test")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestCreateJob(t *testing.T) {
	jobs := &fakeJobs{}
	r := newTestRouter(t, &services.ServiceContainer{JobService: jobs})

	t.Run("created", func(t *testing.T) {
		w, env := do(r, http.MethodPost, "/api/v1/jobs", `{"jobTitle":"Engineer","company":"Acme"}`, true)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, env.Success)

		var job dto.JobResponse
		require.NoError(t, json.Unmarshal(env.Data, &job))
		assert.Equal(t, "job-1", job.ID)
		assert.Equal(t, "Acme", jobs.created.Company)
	})

	t.Run("validation error", func(t *testing.T) {
		w, env := do(r, http.MethodPost, "/api/v1/jobs", `{"company":"Acme","status":"Hired"}`, true)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.Contains(t, env.Errors, "jobTitle")
		assert.Contains(t, env.Errors, "status")
	})

	t.Run("malformed body", func(t *testing.T) {
		w, env := do(r, http.MethodPost, "/api/v1/jobs", `{"jobTitle":`, true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		w, env := do(r, http.MethodPost, "/api/v1/jobs", `{"jobTitle":"Engineer","company":"Acme"}`, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.False(t, env.Success)
	})
}

func TestGetJob_NotFound(t *testing.T) {
	r := newTestRouter(t, &services.ServiceContainer{JobService: &fakeJobs{}})

	w, env := do(r, http.MethodGet, "/api/v1/jobs/missing", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestDeleteJob_PermanentFlag(t *testing.T) {
	jobs := &fakeJobs{}
	r := newTestRouter(t, &services.ServiceContainer{JobService: jobs})

	w, env := do(r, http.MethodDelete, "/api/v1/jobs/job-9", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, jobs.deleted.permanent)
	assert.Equal(t, "Job application archived", env.Message)

	w, _ = do(r, http.MethodDelete, "/api/v1/jobs/job-9?permanent=true", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, jobs.deleted.permanent)
	assert.Equal(t, "job-9", jobs.deleted.id)
}

func TestExportCSV(t *testing.T) {
	r := newTestRouter(t, &services.ServiceContainer{JobService: &fakeJobs{}})

	w, _ := do(r, http.MethodGet, "/api/v1/jobs/export", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, strings.HasPrefix(w.Body.String(), "Company,Job Title"))
}

func TestSharedResumeIsPublic(t *testing.T) {
	r := newTestRouter(t, &services.ServiceContainer{ResumeService: &fakeResumes{}})

	w, env := do(r, http.MethodGet, "/api/v1/resumes/shared/tok", "", false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, _ = do(r, http.MethodGet, "/api/v1/resumes/shared/other", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadPDF(t *testing.T) {
	r := newTestRouter(t, &services.ServiceContainer{ResumeService: &fakeResumes{}})

	w, _ := do(r, http.MethodGet, "/api/v1/resumes/resume-1/download/pdf", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "resume.pdf")
	assert.Equal(t, "%PDF-1.7", w.Body.String())
}

func TestUpcomingReminders_Hours(t *testing.T) {
	reminders := &fakeReminders{}
	r := newTestRouter(t, &services.ServiceContainer{ReminderService: reminders})

	w, _ := do(r, http.MethodGet, "/api/v1/reminders/upcoming", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, services.DefaultUpcomingHours, reminders.hours)

	w, _ = do(r, http.MethodGet, "/api/v1/reminders/upcoming?hours=48", "", true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 48, reminders.hours)

	w, env := do(r, http.MethodGet, "/api/v1/reminders/upcoming?hours=0", "", true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Errors, "hours")
}

func TestParsePagination(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
	}{
		{"", 1, 10},
		{"page=3&limit=25", 3, 25},
		{"page=-1&limit=0", 1, 10},
		{"limit=1000", 1, 100},
		{"page=abc", 1, 10},
	}
	for _, tt := range cases {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			page, limit := ParsePagination(c)
			assert.Equal(t, tt.page, page)
			assert.Equal(t, tt.limit, limit)
		})
	}
}
