package entity

import (
	"time"
)

type Queue struct {
	ID             int64     `json:"id" db:"id"`
	BusinessID     int64     `json:"business_id" db:"business_id"`
	Name           string    `json:"name" db:"name"`
	AvgServiceTime int       `json:"avg_service_time" db:"avg_service_time"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type QueueWithSize struct {
	Queue
	Size int `json:"size"`
}
