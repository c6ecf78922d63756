package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"queueline-app/internal/entity"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	query := `
		INSERT INTO notifications (user_id, channel, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		notification.UserID,
		notification.Channel,
		notification.Message,
		notification.Status,
		now,
	).Scan(&notification.ID)

	if err != nil {
		return fmt.Errorf("%w: failed to create notification: %v", entity.ErrStorage, err)
	}

	notification.CreatedAt = now
	return nil
}

func (r *notificationRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, channel, message, status, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query notifications: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	var notifications []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Channel, &n.Message, &n.Status, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan notification: %v", entity.ErrStorage, err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate notifications: %v", entity.ErrStorage, err)
	}

	return notifications, nil
}
