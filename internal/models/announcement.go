package models

import "time"

// AnnouncementStatus toggles visibility to residents.
type AnnouncementStatus string

const (
	AnnouncementActive   AnnouncementStatus = "active"
	AnnouncementInactive AnnouncementStatus = "inactive"
)

// Announcement is a notice published by the back office.
type Announcement struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Content       string             `json:"content"`
	Status        AnnouncementStatus `json:"status"`
	ExpiresAt     *time.Time         `json:"expiresAt,omitempty"`
	CreatedBy     string             `json:"createdBy"`
	CreatedByName string             `json:"createdByName"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

// Visible reports whether residents should see the announcement at now.
func (a Announcement) Visible(now time.Time) bool {
	if a.Status != AnnouncementActive {
		return false
	}
	return a.ExpiresAt == nil || a.ExpiresAt.After(now)
}
