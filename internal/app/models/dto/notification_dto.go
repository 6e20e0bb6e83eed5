package dto

import "github.com/okan/urcp/internal/app/models"

// NotificationListResponse wraps a page of notifications
type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Pagination    PaginationInfo         `json:"pagination"`
}

// UnreadCountResponse carries the number of unread notifications
type UnreadCountResponse struct {
	Count int64 `json:"count" example:"3"`
}
