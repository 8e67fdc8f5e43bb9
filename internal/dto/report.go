package dto

import "time"

// ExportResponse is returned after a report export has been rendered.
type ExportResponse struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Date        string    `json:"date"`
	DownloadURL string    `json:"downloadUrl"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// ApplicationListQuery carries GET /applications query parameters.
type ApplicationListQuery struct {
	Status string `form:"status"`
	Limit  int    `form:"limit"`
}
