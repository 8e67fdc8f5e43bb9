package models

import "time"

// ReportExport describes a rendered report file and its signed download link.
type ReportExport struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Date        string    `json:"date"`
	Path        string    `json:"-"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}
