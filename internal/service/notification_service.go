package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/residence-portal-api/internal/models"
	"github.com/noah-isme/residence-portal-api/internal/repository"
	"github.com/noah-isme/residence-portal-api/internal/websocket"
	appErrors "github.com/noah-isme/residence-portal-api/pkg/errors"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	Get(ctx context.Context, id string) (*models.Notification, error)
	ListForUser(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
}

// NotificationPublisher pushes a persisted notification to live connections.
type NotificationPublisher interface {
	Publish(userID string, event websocket.Event) bool
}

// NotificationDispatcher hands a persisted notification to an out-of-band channel such as email.
type NotificationDispatcher interface {
	Dispatch(n models.Notification) error
}

// NotificationService persists notifications and fans them out.
type NotificationService struct {
	repo       notificationStore
	publisher  NotificationPublisher
	dispatcher NotificationDispatcher
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewNotificationService constructs the service. publisher and dispatcher are optional.
func NewNotificationService(repo notificationStore, publisher NotificationPublisher, dispatcher NotificationDispatcher, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, publisher: publisher, dispatcher: dispatcher, metrics: metrics, logger: logger, now: time.Now}
}

// Emit writes one notification for userID. Push and dispatch failures are logged only.
func (s *NotificationService) Emit(ctx context.Context, userID string, typ models.NotificationType, title, message string) (*models.Notification, error) {
	now := s.now().UTC()
	n := &models.Notification{
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.metrics.ObserveNotification(string(typ), false)
		return nil, appErrors.Unavailable(err, "failed to store notification")
	}
	s.metrics.ObserveNotification(string(typ), true)

	if s.publisher != nil {
		s.publisher.Publish(userID, websocket.Event{Type: "notification", Data: n})
	}
	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(*n); err != nil {
			s.logger.Warn("notification dispatch failed", zap.String("notification_id", n.ID), zap.Error(err))
		}
	}
	return n, nil
}

// List returns the actor's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, actor models.Actor, filter models.NotificationFilter) ([]models.Notification, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	items, err := s.repo.ListForUser(ctx, actor.UserID, filter)
	if err != nil {
		return nil, appErrors.Unavailable(err, "failed to list notifications")
	}
	return items, nil
}

// MarkRead flags one of the actor's notifications as read.
func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id string) (*models.Notification, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrDocumentNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Unavailable(err, "failed to load notification")
	}
	if n.UserID != actor.UserID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	if n.Read {
		return n, nil
	}
	now := s.now().UTC()
	if err := s.repo.MarkRead(ctx, id, now); err != nil {
		return nil, appErrors.Unavailable(err, "failed to mark notification read")
	}
	n.Read = true
	n.UpdatedAt = now
	return n, nil
}

// MarkAllRead flags every unread notification of the actor and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int, error) {
	changed, err := s.repo.MarkAllRead(ctx, actor.UserID, s.now().UTC())
	if err != nil {
		return changed, appErrors.Unavailable(err, "failed to mark notifications read")
	}
	return changed, nil
}

// UnreadCount returns how many unread notifications the actor has.
func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int, error) {
	count, err := s.repo.CountUnread(ctx, actor.UserID)
	if err != nil {
		return 0, appErrors.Unavailable(err, "failed to count notifications")
	}
	return count, nil
}
