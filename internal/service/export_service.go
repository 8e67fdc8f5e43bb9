package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
	"github.com/noah-isme/residence-portal-api/pkg/export"
	"github.com/noah-isme/residence-portal-api/pkg/storage"
)

type dailyReporter interface {
	Daily(ctx context.Context, date string, detailed bool) (*models.DailyReport, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type exportStore interface {
	Create(ctx context.Context, e *models.ReportExport) error
	Get(ctx context.Context, id string) (*models.ReportExport, error)
}

type urlSigner interface {
	Sign(exportID, path string) (string, storage.Grant, error)
	Verify(token string, allowExpired bool) (storage.Grant, error)
}

// ExportRequest selects the day and encoding of a report export.
type ExportRequest struct {
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}

// Download is an opened export file ready to stream.
type Download struct {
	File        *os.File
	Filename    string
	ContentType string
}

// ExportService renders daily reports to files and hands out signed download links.
type ExportService struct {
	reports   dailyReporter
	storage   fileStorage
	exports   exportStore
	signer    urlSigner
	apiPrefix string
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(reports dailyReporter, files fileStorage, exports exportStore, signer urlSigner, apiPrefix string, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if apiPrefix == "" {
		apiPrefix = "/api/v1"
	}
	return &ExportService{
		reports:   reports,
		storage:   files,
		exports:   exports,
		signer:    signer,
		apiPrefix: strings.TrimRight(apiPrefix, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

// ExportDaily renders the daily report and returns its signed download link.
func (s *ExportService) ExportDaily(ctx context.Context, req ExportRequest) (*models.ReportExport, error) {
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return nil, fieldError("format", "format must be one of csv, pdf")
	}
	renderer, err := export.RendererFor(format)
	if err != nil {
		return nil, fieldError("format", err.Error())
	}
	report, err := s.reports.Daily(ctx, req.Date, false)
	if err != nil {
		return nil, err
	}
	payload, err := renderer.Render(ReportTable(report))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	id := uuid.NewString()
	filename := fmt.Sprintf("daily_%s_%s.%s", report.Date, id[:8], renderer.Extension())
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store report")
	}
	token, grant, err := s.signer.Sign(id, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download")
	}

	record := &models.ReportExport{
		ID:          id,
		Format:      string(format),
		Date:        report.Date,
		Path:        relPath,
		DownloadURL: fmt.Sprintf("%s/exports/%s", s.apiPrefix, token),
		ExpiresAt:   grant.ExpiresAt,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.exports.Create(ctx, record); err != nil {
		return nil, appErrors.Unavailable(err, "failed to record export")
	}
	s.logger.Info("report exported", zap.String("export_id", id), zap.String("format", record.Format), zap.String("date", record.Date))
	return record, nil
}

// Open verifies token and opens the export it grants access to.
func (s *ExportService) Open(ctx context.Context, token string) (*Download, error) {
	grant, err := s.signer.Verify(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, "download link has expired")
		}
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link is invalid")
	}
	record, err := s.exports.Get(ctx, grant.ExportID)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Unavailable(err, "failed to load export")
	}
	if record.Path != grant.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "download link is invalid")
	}
	f, err := s.storage.Open(grant.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	contentType := "text/csv"
	if record.Format == string(export.FormatPDF) {
		contentType = "application/pdf"
	}
	return &Download{File: f, Filename: filepath.Base(grant.Path), ContentType: contentType}, nil
}

// Cleanup removes export files older than ttl.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	removed, err := s.storage.CleanupOlderThan(ttl)
	if err != nil {
		return removed, err
	}
	if len(removed) > 0 {
		s.logger.Info("expired exports removed", zap.Int("count", len(removed)))
	}
	return removed, nil
}
