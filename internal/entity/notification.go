package entity

import "time"

type NotificationStatus string

const (
	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"
)

type Notification struct {
	ID        int64              `json:"id" db:"id"`
	UserID    int64              `json:"user_id" db:"user_id"`
	Channel   AlertChannel       `json:"channel" db:"channel"`
	Message   string             `json:"message" db:"message"`
	Status    NotificationStatus `json:"status" db:"status"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
}
