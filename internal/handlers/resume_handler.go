package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/services/dto"
)

type ResumeHandler struct {
	*BaseHandler
	resumeService services.ResumeService
}

func NewResumeHandler(base *BaseHandler, resumeService services.ResumeService) *ResumeHandler {
	return &ResumeHandler{
		BaseHandler:   base,
		resumeService: resumeService,
	}
}

func (h *ResumeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// Public
	rg.GET("/resumes/shared/:token", append(h.guards.chain(h.guards.APILimit), h.GetShared)...)

	resumes := rg.Group("/resumes", h.guards.Protected()...)
	{
		resumes.POST("", h.CreateResume)
		resumes.GET("", h.ListResumes)
		resumes.GET("/:id", h.GetResume)
		resumes.PUT("/:id", h.UpdateResume)
		resumes.DELETE("/:id", h.DeleteResume)

		resumes.POST("/:id/versions", h.CreateVersion)
		resumes.GET("/:id/versions", h.ListVersions)
		resumes.POST("/:id/share", h.Share)

		resumes.POST("/:id/pdf", h.GeneratePDF)
		resumes.GET("/:id/download/pdf", h.DownloadPDF)
		resumes.GET("/:id/completeness", h.Completeness)
	}

	ai := resumes.Group("", h.guards.chain(h.guards.AILimit)...)
	{
		ai.POST("/generate-ai", h.GenerateWithAI)
		ai.POST("/:id/analyze", h.Analyze)
	}
}

// CreateResume godoc
// @Summary Create a resume
// @Tags resumes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateResumeRequest true "Resume"
// @Success 201 {object} Response{data=models.Resume}
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /resumes [post]
func (h *ResumeHandler) CreateResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateResumeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resume, err := h.resumeService.CreateResume(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Resume created", resume)
}

func (h *ResumeHandler) ListResumes(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.ResumeListQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	page, limit := ParsePagination(c)

	list, err := h.resumeService.ListResumes(c.Request.Context(), h.GetDB(c), userID, q, page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, list)
}

func (h *ResumeHandler) GetResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resume, err := h.resumeService.GetResume(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, resume)
}

func (h *ResumeHandler) UpdateResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateResumeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resume, err := h.resumeService.UpdateResume(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, resume)
}

func (h *ResumeHandler) DeleteResume(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.resumeService.DeleteResume(c.Request.Context(), h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "Resume deleted")
}

// =======================
// Versions and sharing
// =======================

// CreateVersion godoc
// @Summary Create a new version of a resume
// @Description Deep-copies the resume into a child linked to it. The parent is not modified.
// @Tags resumes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Param body body dto.CreateVersionRequest false "Optional title"
// @Success 201 {object} Response{data=models.Resume}
// @Router /resumes/{id}/versions [post]
func (h *ResumeHandler) CreateVersion(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateVersionRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	version, err := h.resumeService.CreateVersion(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Resume version created", version)
}

func (h *ResumeHandler) ListVersions(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	versions, err := h.resumeService.ListVersions(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, versions)
}

func (h *ResumeHandler) Share(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.ShareResumeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	share, err := h.resumeService.Share(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), req.IsPublic)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, share)
}

// GetShared godoc
// @Summary View a publicly shared resume
// @Tags resumes
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} Response{data=models.Resume}
// @Failure 404 {object} apperrors.ErrorResponse
// @Router /resumes/shared/{token} [get]
func (h *ResumeHandler) GetShared(c *gin.Context) {
	resume, err := h.resumeService.GetShared(c.Request.Context(), h.GetDB(c), c.Param("token"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, resume)
}

// =======================
// Files
// =======================

func (h *ResumeHandler) GeneratePDF(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.GeneratePDFRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	file, err := h.resumeService.GeneratePDF(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "PDF generated", file)
}

// DownloadPDF godoc
// @Summary Download the resume PDF
// @Tags resumes
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Resume ID"
// @Success 200 {file} file
// @Router /resumes/{id}/download/pdf [get]
func (h *ResumeHandler) DownloadPDF(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	body, filename, err := h.resumeService.DownloadPDF(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	defer body.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", body, map[string]string{
		"Content-Disposition": `attachment; filename="` + filename + `"`,
	})
}

// =======================
// Review
// =======================

func (h *ResumeHandler) GenerateWithAI(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.GenerateResumeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resume, err := h.resumeService.GenerateWithAI(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Resume generated", resume)
}

func (h *ResumeHandler) Analyze(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	analysis, err := h.resumeService.Analyze(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, analysis)
}

func (h *ResumeHandler) Completeness(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	score, err := h.resumeService.Completeness(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, score)
}
