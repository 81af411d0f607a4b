package postgres

import (
	"context"
	"encoding/json"

	"github.com/krili-app/krili/internal/core/domain"
)

// NotificationRepo implements ports.NotificationRepository with pgx. The data
// payload is stored as JSONB.
type NotificationRepo struct {
	db *DB
}

// NewNotificationRepo creates a new NotificationRepo.
func NewNotificationRepo(db *DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create inserts a notification.
func (r *NotificationRepo) Create(ctx context.Context, n *domain.Notification) error {
	data, err := json.Marshal(n.Data)
	if err != nil {
		return err
	}
	_, err = r.db.Pool.Exec(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, data, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, n.ID, n.UserID, n.Title, n.Message, n.Type, data, n.IsRead, n.CreatedAt)
	return err
}

// ListByUser returns the user's notifications, newest first, with the total
// count for pagination.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, offset, limit int) ([]domain.Notification, int, error) {
	var total int
	if err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, user_id, title, message, type, COALESCE(data, '{}'), is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, userID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var data []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &data, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		_ = json.Unmarshal(data, &n.Data)
		out = append(out, n)
	}
	return out, total, rows.Err()
}

// MarkRead marks one notification as read if owned by the user.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

// MarkAllRead marks every notification of the user as read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1`, userID)
	return err
}

// Delete removes a notification if owned by the user.
func (r *NotificationRepo) Delete(ctx context.Context, id, userID string) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM notifications WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}
