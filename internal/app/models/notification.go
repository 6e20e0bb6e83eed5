package models

import "time"

// NotificationType is the closed set of notification kinds consumed by the
// client
type NotificationType string

const (
	NotifyProjectApproved     NotificationType = "project_approved"
	NotifyRoleRequestApproved NotificationType = "role_request_approved"
	NotifyRoleRequestRejected NotificationType = "role_request_rejected"
	NotifyNewRoleRequest      NotificationType = "new_role_request"
	NotifyNewComment          NotificationType = "new_comment"
	NotifyNewReply            NotificationType = "new_reply"
	NotifyProjectUpdate       NotificationType = "project_update"
	NotifyProjectCompleted    NotificationType = "project_completed"
)

// Notification is a message enqueued for a recipient by the lifecycle,
// participation and discussion engines
type Notification struct {
	ID          int64            `json:"id" db:"id"`
	RecipientID int64            `json:"recipientId" db:"recipient_id"`
	Type        NotificationType `json:"type" db:"type"`
	Message     string           `json:"message" db:"message"`
	ProjectID   *int64           `json:"projectId,omitempty" db:"project_id"`
	FromUserID  *int64           `json:"fromUserId,omitempty" db:"from_user_id"`
	IsRead      bool             `json:"isRead" db:"is_read"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`

	FromUser *User `json:"fromUser,omitempty"`
}
