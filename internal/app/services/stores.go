package services

import (
	"context"
	"time"

	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/app/repositories"
)

// The services accept narrow store interfaces instead of concrete
// repositories so business flows can be tested against in-memory fakes.
// The pgx-backed repositories satisfy them.

// ProjectStore persists the project aggregate
type ProjectStore interface {
	Create(ctx context.Context, project *models.Project) (int64, error)
	GetAggregate(ctx context.Context, id int64) (*models.Project, error)
	SaveAggregate(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id int64) error
	DeleteAttachment(ctx context.Context, projectID, attachmentID int64) error
	GetAll(ctx context.Context, filter repositories.ProjectFilter) ([]*models.Project, int64, error)
	GetByMember(ctx context.Context, userID int64, page, pageSize int) ([]*models.Project, int64, error)
	GetPending(ctx context.Context, page, pageSize int) ([]*models.Project, int64, error)
}

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	GetAll(ctx context.Context, role, department, search string, page, pageSize int) ([]*models.User, int64, error)
}

// TokenStore persists refresh tokens
type TokenStore interface {
	Save(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	Get(ctx context.Context, token string) (*repositories.RefreshToken, error)
	Delete(ctx context.Context, token string) error
}

// NotificationStore persists notifications
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) (int64, error)
	GetByRecipient(ctx context.Context, recipientID int64, page, pageSize int) ([]*models.Notification, int64, error)
	UnreadCount(ctx context.Context, recipientID int64) (int64, error)
	MarkRead(ctx context.Context, recipientID, notificationID int64) error
	MarkAllRead(ctx context.Context, recipientID int64) error
}
