package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type userRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	Decide(ctx context.Context, id string, status models.ApplicationStatus, role models.UserRole, log []models.CommunicationEntry, at time.Time) error
	AppendCommunication(ctx context.Context, id string, entry models.CommunicationEntry) error
}

// DecisionRequest accepts or denies a residence application.
type DecisionRequest struct {
	Status  models.ApplicationStatus `json:"status" validate:"required,oneof=accepted denied"`
	Message string                   `json:"message" validate:"omitempty,max=2000"`
}

// MessageRequest appends a message to a communication log.
type MessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

// UserService handles resident applications and their communication logs.
type UserService struct {
	repo      userRepository
	notifier  notificationEmitter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, notifier notificationEmitter, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &UserService{repo: repo, notifier: notifier, validator: validate, logger: logger, now: time.Now}
}

// ListApplications returns applicants, optionally narrowed to one application status.
func (s *UserService) ListApplications(ctx context.Context, status models.ApplicationStatus, limit int) ([]models.User, error) {
	switch status {
	case "", models.ApplicationPending, models.ApplicationAccepted, models.ApplicationDenied:
	default:
		return nil, fieldError("status", "status must be one of pending, accepted, denied")
	}
	filter := models.UserFilter{ApplicationStatus: status, Limit: limit}
	if status == "" {
		filter.Role = models.RoleNewbie
	}
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to list applications")
	}
	return users, nil
}

// Get returns a user profile. Non-staff may only read their own.
func (s *UserService) Get(ctx context.Context, actor models.Actor, id string) (*models.User, error) {
	if !actor.Role.IsStaff() && actor.UserID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you may only view your own profile")
	}
	return s.load(ctx, id)
}

// Decide records the outcome of a pending application and notifies the applicant.
func (s *UserService) Decide(ctx context.Context, actor models.Actor, id string, req DecisionRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ApplicationStatus != models.ApplicationPending {
		return nil, appErrors.WithDetails(appErrors.ErrInvalidTransition,
			fmt.Sprintf("application is already %s", user.ApplicationStatus),
			map[string]interface{}{"currentStatus": user.ApplicationStatus})
	}

	now := s.now().UTC()
	role := user.Role
	text := "Application denied"
	if req.Status == models.ApplicationAccepted {
		role = models.RoleStudent
		text = "Application accepted"
	}
	if req.Message != "" {
		text += ": " + req.Message
	}
	log := append(append([]models.CommunicationEntry(nil), user.CommunicationLog...),
		models.CommunicationEntry{Message: text, SentBy: actor.UserID, Timestamp: now})

	if err := s.repo.Decide(ctx, id, req.Status, role, log, now); err != nil {
		if errors.Is(err, repository.ErrGuardFailed) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application was decided by someone else, reload and retry")
		}
		return nil, s.mapErr(err, "failed to record decision")
	}
	user.ApplicationStatus = req.Status
	user.Role = role
	user.CommunicationLog = log
	user.UpdatedAt = now
	s.logger.Info("application decided", zap.String("user_id", id), zap.String("status", string(req.Status)), zap.String("actor_id", actor.UserID))

	if s.notifier != nil {
		title, message := ApplicationMessage(req.Status, req.Message)
		if _, err := s.notifier.Emit(ctx, id, models.NotificationMessage, title, message); err != nil {
			s.logger.Warn("application notification failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return user, nil
}

// AppendMessage adds a message to a user's communication log. Staff may write to any
// log; everyone else only to their own.
func (s *UserService) AppendMessage(ctx context.Context, actor models.Actor, id string, req MessageRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	if !actor.Role.IsStaff() && actor.UserID != id {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you may only message on your own log")
	}
	entry := models.CommunicationEntry{Message: req.Message, SentBy: actor.UserID, Timestamp: s.now().UTC()}
	if err := s.repo.AppendCommunication(ctx, id, entry); err != nil {
		if errors.Is(err, repository.ErrGuardFailed) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "communication log is busy, retry")
		}
		return nil, s.mapErr(err, "failed to append message")
	}
	if actor.UserID != id && s.notifier != nil {
		if _, err := s.notifier.Emit(ctx, id, models.NotificationMessage, "New Message", req.Message); err != nil {
			s.logger.Warn("message notification failed", zap.String("user_id", id), zap.Error(err))
		}
	}
	return s.load(ctx, id)
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr(err, "failed to load user")
	}
	return user, nil
}

func (s *UserService) mapErr(err error, message string) error {
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return appErrors.Unavailable(err, message)
}
