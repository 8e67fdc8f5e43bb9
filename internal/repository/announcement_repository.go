package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

const announcementsCollection = "announcements"

// AnnouncementUpdate carries the editable announcement fields. Nil pointers are untouched.
type AnnouncementUpdate struct {
	Title       *string
	Content     *string
	Status      *models.AnnouncementStatus
	ExpiresAt   *time.Time
	ClearExpiry bool
	UpdatedAt   time.Time
}

// AnnouncementRepository persists back-office notices.
type AnnouncementRepository struct {
	store DocumentStore
}

func NewAnnouncementRepository(store DocumentStore) *AnnouncementRepository {
	return &AnnouncementRepository{store: store}
}

func (r *AnnouncementRepository) Create(ctx context.Context, a *models.Announcement) error {
	doc := Document{
		"title":         a.Title,
		"content":       a.Content,
		"status":        a.Status,
		"createdBy":     a.CreatedBy,
		"createdByName": a.CreatedByName,
		"createdAt":     a.CreatedAt,
		"updatedAt":     a.UpdatedAt,
	}
	if a.ExpiresAt != nil {
		doc["expiresAt"] = *a.ExpiresAt
	}
	id, err := r.store.Create(ctx, announcementsCollection, doc)
	if err != nil {
		return fmt.Errorf("create announcement: %w", err)
	}
	a.ID = id
	return nil
}

func (r *AnnouncementRepository) Get(ctx context.Context, id string) (*models.Announcement, error) {
	doc, err := r.store.Get(ctx, announcementsCollection, id)
	if err != nil {
		return nil, err
	}
	a := decodeAnnouncement(doc)
	return &a, nil
}

// List returns announcements newest first, optionally restricted to one status.
func (r *AnnouncementRepository) List(ctx context.Context, status models.AnnouncementStatus) ([]models.Announcement, error) {
	q := Query{OrderBy: "createdAt", Desc: true}
	if status != "" {
		q.Filters = append(q.Filters, Eq("status", status))
	}
	docs, err := r.store.Query(ctx, announcementsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("list announcements: %w", err)
	}
	out := make([]models.Announcement, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeAnnouncement(doc))
	}
	return out, nil
}

func (r *AnnouncementRepository) Update(ctx context.Context, id string, upd AnnouncementUpdate) error {
	fields := Document{"updatedAt": upd.UpdatedAt}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Content != nil {
		fields["content"] = *upd.Content
	}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.ExpiresAt != nil {
		fields["expiresAt"] = *upd.ExpiresAt
	} else if upd.ClearExpiry {
		fields["expiresAt"] = nil
	}
	return r.store.Update(ctx, announcementsCollection, id, fields)
}

func (r *AnnouncementRepository) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, announcementsCollection, id)
}

func decodeAnnouncement(doc Document) models.Announcement {
	a := models.Announcement{
		ID:            doc.String("id"),
		Title:         doc.String("title"),
		Content:       doc.String("content"),
		Status:        models.AnnouncementStatus(doc.String("status")),
		ExpiresAt:     doc.TimePtr("expiresAt"),
		CreatedBy:     doc.String("createdBy"),
		CreatedByName: doc.String("createdByName"),
	}
	a.CreatedAt, _ = doc.Time("createdAt")
	a.UpdatedAt, _ = doc.Time("updatedAt")
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.CreatedAt
	}
	return a
}
