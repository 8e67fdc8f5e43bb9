package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/residence-portal-api/internal/dto"
	"github.com/noah-isme/residence-portal-api/internal/middleware"
	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/service"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// AnalyticsHandler exposes the dashboard request-volume series.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler constructs the analytics handler.
func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func parseAnalyticsQuery(c *gin.Context) (models.AnalyticsWindow, int, bool) {
	var query dto.AnalyticsQuery
	if !bindQuery(c, &query) {
		return "", 0, false
	}
	window := models.AnalyticsWindow(query.Window)
	if window == "" {
		window = models.WindowDays
	}
	return window, query.Buckets, true
}

// Series godoc
// @Summary Request volume per bucket
// @Description Dense series from bucket(now - N) to bucket(now) inclusive, per kind
// @Tags Dashboard
// @Produce json
// @Param window query string false "days | weeks | months"
// @Param buckets query int false "Look-back N (defaults 14 / 6 / 6)"
// @Success 200 {object} response.Envelope
// @Router /dashboard/analytics [get]
func (h *AnalyticsHandler) Series(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	window, buckets, ok := parseAnalyticsQuery(c)
	if !ok {
		return
	}
	series, cacheHit, err := h.analytics.Series(c.Request.Context(), window, buckets)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, series, nil, middleware.ExtractMeta(c))
}

// Refresh godoc
// @Summary Recompute the request volume series
// @Tags Dashboard
// @Produce json
// @Param window query string false "days | weeks | months"
// @Param buckets query int false "Look-back N"
// @Success 200 {object} response.Envelope
// @Router /dashboard/analytics/refresh [post]
func (h *AnalyticsHandler) Refresh(c *gin.Context) {
	if h.analytics == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	window, buckets, ok := parseAnalyticsQuery(c)
	if !ok {
		return
	}
	series, err := h.analytics.Refresh(c.Request.Context(), window, buckets)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, false)
	response.JSON(c, http.StatusOK, series, nil, middleware.ExtractMeta(c))
}
