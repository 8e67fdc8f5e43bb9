package repository

import (
	"context"
	"fmt"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

const exportsCollection = "report_exports"

// ExportRepository records generated report files.
type ExportRepository struct {
	store DocumentStore
}

func NewExportRepository(store DocumentStore) *ExportRepository {
	return &ExportRepository{store: store}
}

func (r *ExportRepository) Create(ctx context.Context, e *models.ReportExport) error {
	doc := Document{
		"format":    e.Format,
		"date":      e.Date,
		"path":      e.Path,
		"expiresAt": e.ExpiresAt,
		"createdAt": e.CreatedAt,
	}
	if e.ID != "" {
		doc["id"] = e.ID
	}
	id, err := r.store.Create(ctx, exportsCollection, doc)
	if err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	e.ID = id
	return nil
}

func (r *ExportRepository) Get(ctx context.Context, id string) (*models.ReportExport, error) {
	doc, err := r.store.Get(ctx, exportsCollection, id)
	if err != nil {
		return nil, err
	}
	e := &models.ReportExport{
		ID:     doc.String("id"),
		Format: doc.String("format"),
		Date:   doc.String("date"),
		Path:   doc.String("path"),
	}
	e.ExpiresAt, _ = doc.Time("expiresAt")
	e.CreatedAt, _ = doc.Time("createdAt")
	return e, nil
}
