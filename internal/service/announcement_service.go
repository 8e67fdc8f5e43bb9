package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type announcementRepository interface {
	Create(ctx context.Context, a *models.Announcement) error
	Get(ctx context.Context, id string) (*models.Announcement, error)
	List(ctx context.Context, status models.AnnouncementStatus) ([]models.Announcement, error)
	Update(ctx context.Context, id string, upd repository.AnnouncementUpdate) error
	Delete(ctx context.Context, id string) error
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAnnouncementService constructs the service.
func NewAnnouncementService(repo announcementRepository, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{repo: repo, validator: validate, logger: logger, now: time.Now}
}

// CreateAnnouncementRequest describes create payload.
type CreateAnnouncementRequest struct {
	Title     string     `json:"title" validate:"required,max=200"`
	Content   string     `json:"content" validate:"required,max=5000"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// UpdateAnnouncementRequest describes a partial update. Omitted fields are unchanged.
type UpdateAnnouncementRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Content     *string    `json:"content" validate:"omitempty,min=1,max=5000"`
	Status      *string    `json:"status" validate:"omitempty,oneof=active inactive"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	ClearExpiry bool       `json:"clearExpiry"`
}

// List returns announcements for actor. Residents only see visible ones.
func (s *AnnouncementService) List(ctx context.Context, actor models.Actor) ([]models.Announcement, error) {
	var status models.AnnouncementStatus
	if !actor.Role.IsStaff() {
		status = models.AnnouncementActive
	}
	items, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to list announcements")
	}
	if actor.Role.IsStaff() {
		return items, nil
	}
	now := s.now()
	visible := items[:0]
	for _, a := range items {
		if a.Visible(now) {
			visible = append(visible, a)
		}
	}
	return visible, nil
}

// Create publishes a new active announcement.
func (s *AnnouncementService) Create(ctx context.Context, actor models.Actor, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	now := s.now().UTC()
	if req.ExpiresAt != nil && !req.ExpiresAt.After(now) {
		return nil, fieldError("expiresAt", "expiresAt must be in the future")
	}
	a := &models.Announcement{
		Title:         req.Title,
		Content:       req.Content,
		Status:        models.AnnouncementActive,
		ExpiresAt:     req.ExpiresAt,
		CreatedBy:     actor.UserID,
		CreatedByName: actor.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, appErrors.Unavailable(err, "failed to create announcement")
	}
	return a, nil
}

// Update modifies an existing announcement.
func (s *AnnouncementService) Update(ctx context.Context, id string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	upd := repository.AnnouncementUpdate{
		Title:       req.Title,
		Content:     req.Content,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
		UpdatedAt:   s.now().UTC(),
	}
	if req.Status != nil {
		status := models.AnnouncementStatus(*req.Status)
		upd.Status = &status
	}
	if err := s.repo.Update(ctx, id, upd); err != nil {
		return nil, s.mapErr(err, "failed to update announcement")
	}
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "failed to load announcement")
	}
	return a, nil
}

// Delete removes an announcement by id.
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err, "failed to delete announcement")
	}
	return nil
}

func (s *AnnouncementService) mapErr(err error, message string) error {
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	}
	return appErrors.Unavailable(err, message)
}
