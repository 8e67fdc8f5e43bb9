package models

import "time"

// NotificationType groups notifications by the feature that raised them.
type NotificationType string

const (
	NotificationGuest       NotificationType = "guest"
	NotificationSleepover   NotificationType = "sleepover"
	NotificationMaintenance NotificationType = "maintenance"
	NotificationComplaint   NotificationType = "complaint"
	NotificationMessage     NotificationType = "message"
)

// NotificationTypeFor maps a request kind to its notification type.
func NotificationTypeFor(k Kind) NotificationType {
	return NotificationType(k)
}

// Notification is a persisted message addressed to one user.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"userId"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// NotificationFilter scopes a user's notification listing.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}
