package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobtracker_backend/internal/imageprocessor"
	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users", h.guards.Protected()...)
	{
		users.GET("/profile", h.GetProfile)
		users.PUT("/profile", h.UpdateProfile)
		users.GET("/preferences", h.GetPreferences)
		users.PUT("/preferences", h.UpdatePreferences)

		users.PUT("/skills", h.UpdateSkills)
		users.PUT("/experience", h.UpdateExperience)
		users.PUT("/education", h.UpdateEducation)
		users.PUT("/certifications", h.UpdateCertifications)

		users.POST("/avatar", h.UploadAvatar)
		users.GET("/export", h.Export)
		users.DELETE("/account", h.DeleteAccount)
		users.POST("/integrations/gmail/sync", h.SyncGmail)
	}
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=dto.UserResponse}
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *UserHandler) GetPreferences(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	prefs, err := h.userService.GetPreferences(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, prefs)
}

func (h *UserHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdatePreferencesRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	prefs, err := h.userService.UpdatePreferences(c.Request.Context(), h.GetDB(c), userID, req.Preferences)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, prefs)
}

func (h *UserHandler) UpdateSkills(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateSkillsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateSkills(c.Request.Context(), h.GetDB(c), userID, req.Skills)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *UserHandler) UpdateExperience(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateExperienceRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateExperience(c.Request.Context(), h.GetDB(c), userID, req.Experience)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *UserHandler) UpdateEducation(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateEducationRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateEducation(c.Request.Context(), h.GetDB(c), userID, req.Education)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *UserHandler) UpdateCertifications(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateCertificationsRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateCertifications(c.Request.Context(), h.GetDB(c), userID, req.Certifications)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

// UploadAvatar godoc
// @Summary Upload a profile picture
// @Description Accepts JPEG, PNG, GIF or WebP up to 5 MB. The image is cropped to a square.
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param avatar formData file true "Image file"
// @Success 200 {object} Response{data=dto.UserResponse}
// @Failure 400 {object} apperrors.ErrorResponse
// @Router /users/avatar [post]
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, imageprocessor.MaxUploadBytes+1<<20)
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("no avatar file provided"))
		return
	}
	if fileHeader.Size > imageprocessor.MaxUploadBytes {
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"avatar": "must be at most 5 MB"}))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		apperrors.HandleError(c, apperrors.NewBadRequestError("failed to read upload"))
		return
	}
	defer file.Close()

	user, err := h.userService.UploadAvatar(c.Request.Context(), h.GetDB(c), userID, file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, user)
}

func (h *UserHandler) Export(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	export, err := h.userService.Export(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="jobtracker-export.json"`)
	h.OK(c, export)
}

// DeleteAccount godoc
// @Summary Delete the account and all owned data
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.DeleteAccountRequest true "Current password"
// @Success 200 {object} Response
// @Failure 401 {object} apperrors.ErrorResponse "Wrong password"
// @Router /users/account [delete]
func (h *UserHandler) DeleteAccount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.DeleteAccountRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if err := h.userService.DeleteAccount(c.Request.Context(), h.GetDB(c), userID, req.Password); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "Account deleted")
}

func (h *UserHandler) SyncGmail(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.GmailImportRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.userService.SyncGmail(c.Request.Context(), h.GetDB(c), userID, req.Query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}
