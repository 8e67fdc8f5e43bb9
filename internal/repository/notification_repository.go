package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/noah-isme/residence-portal-api/internal/models"
)

const notificationsCollection = "notifications"

// NotificationRepository persists per-user notifications.
type NotificationRepository struct {
	store DocumentStore
}

func NewNotificationRepository(store DocumentStore) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	doc := Document{
		"userId":    n.UserID,
		"title":     n.Title,
		"message":   n.Message,
		"type":      n.Type,
		"read":      n.Read,
		"createdAt": n.CreatedAt,
		"updatedAt": n.UpdatedAt,
	}
	id, err := r.store.Create(ctx, notificationsCollection, doc)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	n.ID = id
	return nil
}

func (r *NotificationRepository) Get(ctx context.Context, id string) (*models.Notification, error) {
	doc, err := r.store.Get(ctx, notificationsCollection, id)
	if err != nil {
		return nil, err
	}
	n := decodeNotification(doc)
	return &n, nil
}

// ListForUser returns the user's notifications, newest first.
func (r *NotificationRepository) ListForUser(ctx context.Context, userID string, filter models.NotificationFilter) ([]models.Notification, error) {
	q := Query{
		Filters: []Filter{Eq("userId", userID)},
		OrderBy: "createdAt",
		Desc:    true,
		Limit:   filter.Limit,
	}
	if filter.UnreadOnly {
		q.Filters = append(q.Filters, Eq("read", false))
	}
	docs, err := r.store.Query(ctx, notificationsCollection, q)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	out := make([]models.Notification, 0, len(docs))
	for _, doc := range docs {
		out = append(out, decodeNotification(doc))
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string, at time.Time) error {
	return r.store.Update(ctx, notificationsCollection, id, Document{"read": true, "updatedAt": at})
}

// MarkAllRead flags every unread notification of userID and returns how many changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int, error) {
	unread, err := r.ListForUser(ctx, userID, models.NotificationFilter{UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, n := range unread {
		err := r.store.UpdateIf(ctx, notificationsCollection, n.ID, Eq("read", false), Document{"read": true, "updatedAt": at})
		switch err {
		case nil:
			changed++
		case ErrGuardFailed, ErrDocumentNotFound:
		default:
			return changed, fmt.Errorf("mark notification %s read: %w", n.ID, err)
		}
	}
	return changed, nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	unread, err := r.ListForUser(ctx, userID, models.NotificationFilter{UnreadOnly: true})
	if err != nil {
		return 0, err
	}
	return len(unread), nil
}

func decodeNotification(doc Document) models.Notification {
	n := models.Notification{
		ID:      doc.String("id"),
		UserID:  doc.String("userId"),
		Title:   doc.String("title"),
		Message: doc.String("message"),
		Type:    models.NotificationType(doc.String("type")),
		Read:    doc.Bool("read"),
	}
	n.CreatedAt, _ = doc.Time("createdAt")
	n.UpdatedAt, _ = doc.Time("updatedAt")
	return n
}
