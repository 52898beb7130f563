package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/grc-api/internal/models"
	apperrors "github.com/noah-isme/grc-api/pkg/errors"
	"github.com/noah-isme/grc-api/pkg/jobs"
)

// notificationStore is the persistence surface of the inbox.
type notificationStore interface {
	Create(ctx context.Context, notification *models.Notification) error
	List(ctx context.Context, filter models.NotificationFilter) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// NotificationService delivers in-app notifications through a background
// queue. Delivery is best effort: a full buffer or a failed insert is logged
// and dropped, never propagated to the workflow that triggered it.
type NotificationService struct {
	store  notificationStore
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewNotificationService constructs the service and its dispatch queue.
func NewNotificationService(store notificationStore, cfg jobs.QueueConfig, logger *zap.Logger) *NotificationService {
	s := &NotificationService{store: store, logger: logger}
	cfg.Logger = logger
	s.queue = jobs.NewQueue("notifications", s.deliver, cfg)
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()
}

// Notify enqueues a notification without blocking the caller.
func (s *NotificationService) Notify(userID, title, body, link string) {
	if userID == "" {
		return
	}
	job := jobs.Job{
		ID:   uuid.NewString(),
		Type: "notification",
		Payload: &models.Notification{
			UserID: userID,
			Title:  title,
			Body:   body,
			Link:   link,
		},
	}
	if !s.queue.TryEnqueue(job) {
		s.logger.Warn("notification dropped", zap.String("user_id", userID), zap.String("title", title))
	}
}

// deliver persists a queued notification.
func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	notification, ok := job.Payload.(*models.Notification)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}
	return s.store.Create(ctx, notification)
}

// List returns the actor's inbox.
func (s *NotificationService) List(ctx context.Context, actor *models.Actor, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	notifications, err := s.store.List(ctx, models.NotificationFilter{
		UserID:     actor.UserID,
		UnreadOnly: unreadOnly,
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to list notifications")
	}
	return notifications, nil
}

// MarkRead marks one of the actor's notifications read.
func (s *NotificationService) MarkRead(ctx context.Context, actor *models.Actor, id string) error {
	if err := s.store.MarkRead(ctx, id, actor.UserID); err != nil {
		return apperrors.Clone(apperrors.ErrNotFound, "notification not found")
	}
	return nil
}

// MarkAllRead marks the actor's whole inbox read.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor *models.Actor) error {
	if err := s.store.MarkAllRead(ctx, actor.UserID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to mark notifications read")
	}
	return nil
}

// UnreadCount returns the actor's unread badge count.
func (s *NotificationService) UnreadCount(ctx context.Context, actor *models.Actor) (int, error) {
	count, err := s.store.UnreadCount(ctx, actor.UserID)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to count notifications")
	}
	return count, nil
}
