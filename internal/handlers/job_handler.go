package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/services/dto"
)

const defaultRecentLimit = 5

type JobHandler struct {
	*BaseHandler
	jobService services.JobService
}

func NewJobHandler(base *BaseHandler, jobService services.JobService) *JobHandler {
	return &JobHandler{
		BaseHandler: base,
		jobService:  jobService,
	}
}

func (h *JobHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jobs := rg.Group("/jobs", h.guards.Protected()...)
	{
		jobs.POST("", h.CreateJob)
		jobs.GET("", h.ListJobs)
		jobs.GET("/stats", h.GetStats)
		jobs.GET("/recent", h.GetRecent)
		jobs.GET("/follow-ups", h.GetFollowUps)
		jobs.GET("/export", h.ExportCSV)
		jobs.POST("/bulk", h.BulkAction)

		jobs.GET("/:id", h.GetJob)
		jobs.PUT("/:id", h.UpdateJob)
		jobs.DELETE("/:id", h.DeleteJob)

		jobs.PATCH("/:id/status", h.UpdateStatus)
		jobs.PATCH("/:id/archive", h.ArchiveJob)
		jobs.PATCH("/:id/unarchive", h.UnarchiveJob)
		jobs.POST("/:id/duplicate", h.DuplicateJob)
		jobs.GET("/:id/timeline", h.GetTimeline)

		jobs.POST("/:id/interviews", h.AddInterview)
		jobs.PUT("/:id/interviews/:interviewId", h.UpdateInterview)
		jobs.DELETE("/:id/interviews/:interviewId", h.DeleteInterview)
		jobs.POST("/:id/contacts", h.AddContact)
		jobs.DELETE("/:id/contacts/:contactId", h.DeleteContact)
		jobs.POST("/:id/follow-up", h.RecordFollowUp)
	}

	ai := jobs.Group("", h.guards.chain(h.guards.AILimit)...)
	{
		ai.POST("/:id/analyze-fit", h.AnalyzeFit)
		ai.POST("/:id/cover-letter", h.GenerateCoverLetter)
		ai.POST("/:id/interview-prep", h.InterviewPrep)
		ai.POST("/import/gmail", h.ImportFromGmail)
	}
}

// =======================
// CRUD
// =======================

// CreateJob godoc
// @Summary Create a job application
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateJobRequest true "Application"
// @Success 201 {object} Response{data=dto.JobResponse}
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.CreateJob(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Job application created", job)
}

// ListJobs godoc
// @Summary List job applications
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status filter"
// @Param search query string false "Matches company, title or notes"
// @Param archived query bool false "Archived filter"
// @Param page query int false "Page" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} Response{data=dto.ListResponse[dto.JobResponse]}
// @Router /jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.JobListQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	page, limit := ParsePagination(c)

	list, err := h.jobService.ListJobs(c.Request.Context(), h.GetDB(c), userID, q, page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, list)
}

func (h *JobHandler) GetJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	job, err := h.jobService.GetJob(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

func (h *JobHandler) UpdateJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateJob(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

// DeleteJob godoc
// @Summary Archive or permanently delete a job application
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param permanent query bool false "Delete instead of archiving"
// @Success 200 {object} Response
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	permanent := ParseQueryBool(c, "permanent")

	if err := h.jobService.DeleteJob(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), permanent); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	if permanent {
		h.Message(c, "Job application deleted")
		return
	}
	h.Message(c, "Job application archived")
}

// =======================
// Status and archive
// =======================

func (h *JobHandler) UpdateStatus(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

func (h *JobHandler) ArchiveJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ArchiveJobRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.ArchiveJob(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), req.Reason)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

func (h *JobHandler) UnarchiveJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	job, err := h.jobService.UnarchiveJob(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

func (h *JobHandler) DuplicateJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	job, err := h.jobService.DuplicateJob(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Job application duplicated", job)
}

func (h *JobHandler) GetTimeline(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	timeline, err := h.jobService.GetTimeline(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, timeline)
}

// =======================
// Overviews
// =======================

func (h *JobHandler) GetStats(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	stats, err := h.jobService.GetStats(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, stats)
}

func (h *JobHandler) GetRecent(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	limit := ParseQueryInt(c, "limit", defaultRecentLimit)
	if limit <= 0 || limit > maxLimit {
		limit = defaultRecentLimit
	}

	jobs, err := h.jobService.GetRecent(c.Request.Context(), h.GetDB(c), userID, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, jobs)
}

func (h *JobHandler) GetFollowUps(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	jobs, err := h.jobService.GetFollowUps(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, jobs)
}

func (h *JobHandler) BulkAction(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.BulkJobRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.jobService.BulkAction(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}

// ExportCSV godoc
// @Summary Export job applications as CSV
// @Tags jobs
// @Produce text/csv
// @Security BearerAuth
// @Success 200 {file} file
// @Router /jobs/export [get]
func (h *JobHandler) ExportCSV(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	body, err := h.jobService.ExportCSV(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	filename := fmt.Sprintf("job-applications-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// =======================
// Interviews, contacts, follow-ups
// =======================

func (h *JobHandler) AddInterview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.InterviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.AddInterview(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Interview added", job)
}

func (h *JobHandler) UpdateInterview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.InterviewRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.UpdateInterview(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), c.Param("interviewId"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

func (h *JobHandler) DeleteInterview(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	job, err := h.jobService.DeleteInterview(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), c.Param("interviewId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

func (h *JobHandler) AddContact(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ContactRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.AddContact(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Contact added", job)
}

func (h *JobHandler) DeleteContact(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	job, err := h.jobService.DeleteContact(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), c.Param("contactId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

func (h *JobHandler) RecordFollowUp(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.FollowUpRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	job, err := h.jobService.RecordFollowUp(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, job)
}

// =======================
// AI and imports
// =======================

// AnalyzeFit godoc
// @Summary Score the fit between the user's profile and a job
// @Tags jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} Response{data=dto.JobFitResponse}
// @Failure 502 {object} apperrors.ErrorResponse "AI provider failed"
// @Router /jobs/{id}/analyze-fit [post]
func (h *JobHandler) AnalyzeFit(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	fit, err := h.jobService.AnalyzeFit(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, fit)
}

func (h *JobHandler) GenerateCoverLetter(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CoverLetterRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	letter, err := h.jobService.GenerateCoverLetter(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, letter)
}

func (h *JobHandler) InterviewPrep(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	prep, err := h.jobService.InterviewPrep(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, prep)
}

func (h *JobHandler) ImportFromGmail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.GmailImportRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.jobService.ImportFromGmail(c.Request.Context(), h.GetDB(c), userID, req.Query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}
