package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"jobtracker_backend/internal/services"
	"jobtracker_backend/internal/services/dto"
)

type AnalyticsHandler struct {
	*BaseHandler
	analyticsService services.AnalyticsService
}

func NewAnalyticsHandler(base *BaseHandler, analyticsService services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		BaseHandler:      base,
		analyticsService: analyticsService,
	}
}

func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	analytics := rg.Group("/analytics", h.guards.Protected()...)
	{
		analytics.GET("/dashboard", h.Dashboard)
		analytics.GET("/trends", h.Trends)
		analytics.GET("/success-metrics", h.SuccessMetrics)
		analytics.POST("/refresh", h.Refresh)
		analytics.GET("/export", h.Export)
	}
}

// Dashboard godoc
// @Summary Aggregated statistics for the current user
// @Description Served from the cached snapshot when it is fresh and no explicit range is given.
// @Tags analytics
// @Produce json
// @Security BearerAuth
// @Param period query string false "week, month, quarter, year or all_time"
// @Param from query string false "Range start (YYYY-MM-DD)"
// @Param to query string false "Range end (YYYY-MM-DD)"
// @Success 200 {object} Response{data=dto.DashboardResponse}
// @Router /analytics/dashboard [get]
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.AnalyticsQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	dashboard, err := h.analyticsService.Dashboard(c.Request.Context(), h.GetDB(c), userID, q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, dashboard)
}

func (h *AnalyticsHandler) Trends(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.AnalyticsQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	trends, err := h.analyticsService.Trends(c.Request.Context(), h.GetDB(c), userID, q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, trends)
}

func (h *AnalyticsHandler) SuccessMetrics(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.AnalyticsQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	metrics, err := h.analyticsService.SuccessMetrics(c.Request.Context(), h.GetDB(c), userID, q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, metrics)
}

func (h *AnalyticsHandler) Refresh(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.AnalyticsQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}

	dashboard, err := h.analyticsService.Refresh(c.Request.Context(), h.GetDB(c), userID, q)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	h.OK(c, dashboard)
}

// Export godoc
// @Summary Download analytics as CSV or JSON
// @Tags analytics
// @Produce text/csv
// @Produce json
// @Security BearerAuth
// @Param format query string false "csv or json" default(json)
// @Success 200 {file} file
// @Router /analytics/export [get]
func (h *AnalyticsHandler) Export(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}
	var q dto.AnalyticsQuery
	if !h.BindAndValidate_Query(c, &q) {
		return
	}
	format := strings.ToLower(c.DefaultQuery("format", services.ExportJSON))

	body, contentType, err := h.analyticsService.Export(c.Request.Context(), h.GetDB(c), userID, q, format)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	filename := fmt.Sprintf("analytics-%s.%s", time.Now().Format("2006-01-02"), format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, body)
}
