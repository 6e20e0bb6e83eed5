package services

import (
	"context"
	"time"

	"github.com/okan/urcp/internal/app/engine"
	"github.com/okan/urcp/internal/app/models"
	"github.com/okan/urcp/internal/app/models/dto"
	"github.com/okan/urcp/internal/pkg/helpers"
	"github.com/okan/urcp/internal/pkg/logger"
)

// NotificationService defines the interface for notification operations
type NotificationService interface {
	// Dispatch enqueues the notification intents produced by an engine call.
	// Delivery is best effort: a failed insert is logged and skipped, never
	// propagated, because the aggregate mutation has already been committed.
	Dispatch(ctx context.Context, projectID int64, intents []engine.NotificationIntent)
	GetAll(ctx context.Context, actor models.Actor, page, pageSize int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, actor models.Actor) (int64, error)
	MarkRead(ctx context.Context, actor models.Actor, notificationID int64) error
	MarkAllRead(ctx context.Context, actor models.Actor) error
}

type notificationServiceImpl struct {
	notificationStore NotificationStore
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(notificationStore NotificationStore) NotificationService {
	return &notificationServiceImpl{notificationStore: notificationStore}
}

// Dispatch fans the intents out into stored notifications
func (s *notificationServiceImpl) Dispatch(ctx context.Context, projectID int64, intents []engine.NotificationIntent) {
	now := time.Now()
	for _, intent := range intents {
		fromUserID := intent.FromUserID
		pid := projectID
		n := &models.Notification{
			RecipientID: intent.RecipientID,
			Type:        intent.Type,
			Message:     intent.Message,
			ProjectID:   &pid,
			FromUserID:  &fromUserID,
			CreatedAt:   now,
		}
		if _, err := s.notificationStore.Create(ctx, n); err != nil {
			logger.Error().Err(err).
				Int64("recipientId", intent.RecipientID).
				Str("type", string(intent.Type)).
				Int64("projectId", projectID).
				Msg("Failed to store notification")
		}
	}
}

// GetAll retrieves a page of the actor's notifications
func (s *notificationServiceImpl) GetAll(ctx context.Context, actor models.Actor, page, pageSize int) (*dto.NotificationListResponse, error) {
	page, pageSize = helpers.NormalizePagination(page, pageSize)

	notifications, total, err := s.notificationStore.GetByRecipient(ctx, actor.ID, page, pageSize)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}

	return &dto.NotificationListResponse{
		Notifications: notifications,
		Pagination:    helpers.NewPaginationInfo(total, page, pageSize),
	}, nil
}

// UnreadCount returns the actor's unread notification count
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	return s.notificationStore.UnreadCount(ctx, actor.ID)
}

// MarkRead marks one of the actor's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, actor models.Actor, notificationID int64) error {
	return s.notificationStore.MarkRead(ctx, actor.ID, notificationID)
}

// MarkAllRead marks all of the actor's notifications as read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, actor models.Actor) error {
	return s.notificationStore.MarkAllRead(ctx, actor.ID)
}
