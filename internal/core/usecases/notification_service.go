package usecases

import (
	"context"

	"github.com/krili-app/krili/internal/core/domain"
	"github.com/krili-app/krili/internal/core/ports"
)

// NotificationService reads and mutates a user's in-app notifications.
// Writes happen in the notifier worker, which persists broker events.
type NotificationService struct {
	notifications ports.NotificationRepository
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(notifications ports.NotificationRepository) *NotificationService {
	return &NotificationService{notifications: notifications}
}

// ListByUser returns the user's notifications, newest first.
func (s *NotificationService) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Notification, int, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return s.notifications.ListByUser(ctx, userID, offset, limit)
}

// MarkRead marks one notification as read. The userID guard prevents marking
// another user's notification.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return s.notifications.MarkRead(ctx, id, userID)
}

// MarkAllRead marks every notification of the user as read.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return s.notifications.MarkAllRead(ctx, userID)
}

// Delete removes a notification owned by the user.
func (s *NotificationService) Delete(ctx context.Context, id, userID string) error {
	return s.notifications.Delete(ctx, id, userID)
}

// Store persists an incoming broker event. Called by the notifier worker.
func (s *NotificationService) Store(ctx context.Context, n *domain.Notification) error {
	return s.notifications.Create(ctx, n)
}
