package dto

// NotificationListQuery carries GET /notifications query parameters.
type NotificationListQuery struct {
	Unread bool `form:"unread"`
	Limit  int  `form:"limit"`
}

// UnreadCountResponse is the body of GET /notifications/unread-count.
type UnreadCountResponse struct {
	Count int `json:"count"`
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}
