package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/dto"
	"github.com/noah-isme/residence-portal-api/internal/service"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/response"
)

// ReportHandler exposes the daily report and its exports.
type ReportHandler struct {
	reports *service.ReportService
	exports *service.ExportService
	logger  *zap.Logger
}

// NewReportHandler constructs handler.
func NewReportHandler(reports *service.ReportService, exports *service.ExportService, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{reports: reports, exports: exports, logger: logger}
}

// Daily godoc
// @Summary Daily request report
// @Description Per-kind totals for one day split into pending, open, resolved and denied
// @Tags Dashboard
// @Produce json
// @Param date query string false "YYYY-MM-DD, defaults to today"
// @Param detailed query bool false "Include each request"
// @Success 200 {object} response.Envelope
// @Router /dashboard/reports/daily [get]
func (h *ReportHandler) Daily(c *gin.Context) {
	if h.reports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var query dto.DailyReportQuery
	if !bindQuery(c, &query) {
		return
	}
	report, err := h.reports.Daily(c.Request.Context(), query.Date, query.Detailed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Export the daily report
// @Tags Dashboard
// @Accept json
// @Produce json
// @Param payload body service.ExportRequest true "Date and format"
// @Success 201 {object} response.Envelope
// @Router /dashboard/reports/daily/export [post]
func (h *ReportHandler) Export(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	var req service.ExportRequest
	if !bindJSON(c, &req) {
		return
	}
	record, err := h.exports.ExportDaily(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ExportResponse{
		ID:          record.ID,
		Format:      record.Format,
		Date:        record.Date,
		DownloadURL: record.DownloadURL,
		ExpiresAt:   record.ExpiresAt,
	})
}

// Download godoc
// @Summary Download an exported report
// @Description The signed token is the authorisation; no bearer token is needed
// @Tags Dashboard
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /exports/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	if h.exports == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	download, err := h.exports.Open(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.File.Close()

	c.Header("Content-Type", download.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", download.Filename))
	c.Header("Cache-Control", "no-store")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, download.File); err != nil {
		h.logger.Warn("export download interrupted", zap.String("file", download.Filename), zap.Error(err))
	}
}
