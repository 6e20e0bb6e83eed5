package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/pkg/apperrors"
)

// NotificationRepository handles database operations for notifications
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create inserts a new notification and returns its ID
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) (int64, error) {
	query := squirrel.Insert("notifications").
		Columns("recipient_id", "type", "message", "project_id", "from_user_id", "is_read", "created_at").
		Values(n.RecipientID, n.Type, n.Message, n.ProjectID, n.FromUserID, n.IsRead, n.CreatedAt).
		Suffix("RETURNING id").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var id int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return id, nil
}

// GetByRecipient retrieves a page of the recipient's notifications, newest
// first, with the sender summary populated
func (r *NotificationRepository) GetByRecipient(ctx context.Context, recipientID int64, page, pageSize int) ([]*models.Notification, int64, error) {
	offset := (page - 1) * pageSize
	query := squirrel.Select(
		"n.id", "n.recipient_id", "n.type", "n.message", "n.project_id",
		"n.from_user_id", "n.is_read", "n.created_at",
		"u.name", "u.role", "u.department", "u.profile_photo_url").
		Column("COUNT(*) OVER()").
		From("notifications n").
		LeftJoin("users u ON u.id = n.from_user_id").
		Where("n.recipient_id = ?", recipientID).
		OrderBy("n.created_at DESC", "n.id DESC").
		Limit(uint64(pageSize)).Offset(uint64(offset)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building SQL: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	var total int64
	for rows.Next() {
		var n models.Notification
		var name, role, department, photoURL *string
		err := rows.Scan(
			&n.ID, &n.RecipientID, &n.Type, &n.Message, &n.ProjectID,
			&n.FromUserID, &n.IsRead, &n.CreatedAt,
			&name, &role, &department, &photoURL,
			&total,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning row: %w", err)
		}
		if n.FromUserID != nil && name != nil {
			n.FromUser = &models.User{
				ID:              *n.FromUserID,
				Name:            *name,
				Role:            models.Role(*role),
				Department:      *department,
				ProfilePhotoURL: photoURL,
			}
		}
		notifications = append(notifications, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return notifications, total, nil
}

// UnreadCount returns the number of unread notifications for the recipient
func (r *NotificationRepository) UnreadCount(ctx context.Context, recipientID int64) (int64, error) {
	query := squirrel.Select("COUNT(*)").
		From("notifications").
		Where("recipient_id = ? AND is_read = FALSE", recipientID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("error building SQL: %w", err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("error executing query: %w", err)
	}
	return count, nil
}

// MarkRead marks one of the recipient's notifications as read. A notification
// belonging to someone else is indistinguishable from a missing one.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, notificationID int64) error {
	query := squirrel.Update("notifications").
		Set("is_read", true).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	result, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrResourceNotFound
	}
	return nil
}

// MarkAllRead marks every notification of the recipient as read
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID int64) error {
	query := squirrel.Update("notifications").
		Set("is_read", true).
		Where("recipient_id = ? AND is_read = FALSE", recipientID).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("error building SQL: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}
	return nil
}
