package handlers

import (
	"github.com/gin-gonic/gin"

	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/services/dto"
	"jobtracker_backend/pkg/apperrors"
)

const maxUpcomingHours = 24 * 30

type ReminderHandler struct {
	*BaseHandler
	reminderService services.ReminderService
}

func NewReminderHandler(base *BaseHandler, reminderService services.ReminderService) *ReminderHandler {
	return &ReminderHandler{
		BaseHandler:     base,
		reminderService: reminderService,
	}
}

func (h *ReminderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reminders := rg.Group("/reminders", h.guards.Protected()...)
	{
		reminders.POST("", h.CreateReminder)
		reminders.GET("", h.ListReminders)
		reminders.GET("/upcoming", h.Upcoming)
		reminders.GET("/overdue", h.Overdue)
		reminders.GET("/today", h.Today)
		reminders.GET("/job/:jobId", h.ByJob)
		reminders.POST("/auto-generate/:jobId", h.AutoGenerate)
		reminders.POST("/bulk", h.BulkAction)

		reminders.GET("/:id", h.GetReminder)
		reminders.PUT("/:id", h.UpdateReminder)
		reminders.DELETE("/:id", h.DeleteReminder)
		reminders.PATCH("/:id/complete", h.Complete)
		reminders.PATCH("/:id/snooze", h.Snooze)
		reminders.PATCH("/:id/cancel", h.Cancel)
	}
}

// CreateReminder godoc
// @Summary Create a reminder for a job application
// @Tags reminders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.CreateReminderRequest true "Reminder"
// @Success 201 {object} Response{data=dto.ReminderResponse}
// @Failure 400 {object} apperrors.ErrorResponse
// @Failure 404 {object} apperrors.ErrorResponse "Job not found"
// @Router /reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CreateReminderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	reminder, err := h.reminderService.CreateReminder(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Reminder created", reminder)
}

func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.ReminderListQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	page, limit := ParsePagination(c)

	list, err := h.reminderService.ListReminders(c.Request.Context(), h.GetDB(c), userID, q, page, limit)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, list)
}

func (h *ReminderHandler) GetReminder(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	reminder, err := h.reminderService.GetReminder(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminder)
}

func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.UpdateReminderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	reminder, err := h.reminderService.UpdateReminder(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminder)
}

func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	if err := h.reminderService.DeleteReminder(c.Request.Context(), h.GetDB(c), userID, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Message(c, "Reminder deleted")
}

// =======================
// Views
// =======================

// Upcoming godoc
// @Summary Pending reminders due within the next hours
// @Tags reminders
// @Produce json
// @Security BearerAuth
// @Param hours query int false "Look-ahead window" default(24)
// @Success 200 {object} Response{data=[]dto.ReminderResponse}
// @Router /reminders/upcoming [get]
func (h *ReminderHandler) Upcoming(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	hours := ParseQueryInt(c, "hours", services.DefaultUpcomingHours)
	if hours <= 0 || hours > maxUpcomingHours {
		apperrors.HandleError(c, apperrors.ValidationError(map[string]string{"hours": "must be between 1 and 720"}))
		return
	}

	reminders, err := h.reminderService.Upcoming(c.Request.Context(), h.GetDB(c), userID, hours)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminders)
}

func (h *ReminderHandler) Overdue(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.Overdue(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminders)
}

func (h *ReminderHandler) Today(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.Today(c.Request.Context(), h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminders)
}

func (h *ReminderHandler) ByJob(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.ByJob(c.Request.Context(), h.GetDB(c), userID, c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminders)
}

func (h *ReminderHandler) AutoGenerate(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	reminders, err := h.reminderService.AutoGenerate(c.Request.Context(), h.GetDB(c), userID, c.Param("jobId"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.Created(c, "Reminders generated", reminders)
}

// =======================
// Transitions
// =======================

func (h *ReminderHandler) Complete(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.CompleteReminderRequest
	if c.Request.ContentLength > 0 && !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.reminderService.Complete(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), req.Notes)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}

func (h *ReminderHandler) Snooze(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.SnoozeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	reminder, err := h.reminderService.Snooze(c.Request.Context(), h.GetDB(c), userID, c.Param("id"), req.Minutes)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminder)
}

func (h *ReminderHandler) Cancel(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	reminder, err := h.reminderService.Cancel(c.Request.Context(), h.GetDB(c), userID, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, reminder)
}

func (h *ReminderHandler) BulkAction(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var req dto.BulkReminderRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	result, err := h.reminderService.BulkAction(c.Request.Context(), h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, result)
}
