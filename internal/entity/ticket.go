package entity

import (
	"database/sql"
	"time"
)

type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusCompleted TicketStatus = "completed"
	TicketStatusCancelled TicketStatus = "cancelled"
)

type Ticket struct {
	ID       int64        `json:"-" db:"id"`
	TicketID string       `json:"ticket_id" db:"ticket_id"`
	QueueID  int64        `json:"queue_id" db:"queue_id"`
	UserID   int64        `json:"user_id" db:"user_id"`
	Position int          `json:"position" db:"position"`
	Status   TicketStatus `json:"status" db:"status"`
	JoinTime time.Time    `json:"join_time" db:"join_time"`
	// LeaveTime and WaitTime stay unset while the ticket is active.
	LeaveTime sql.NullTime  `json:"leave_time,omitempty" db:"leave_time"`
	WaitTime  sql.NullInt64 `json:"wait_time,omitempty" db:"wait_time"`

	AlertsEnabled   bool          `json:"alerts_enabled" db:"alerts_enabled"`
	AlertThreshold  int           `json:"alert_threshold" db:"alert_threshold"`
	AlertChannels   AlertChannels `json:"alert_channels" db:"alert_channels"`
	AlertEmail      string        `json:"alert_email,omitempty" db:"alert_email"`
	AlertTelegramID string        `json:"alert_telegram_id,omitempty" db:"alert_telegram_id"`
	AlertsSent      bool          `json:"alerts_sent" db:"alerts_sent"`
}

// TicketWithETA is the read-side shape of an active ticket. ETA is recomputed
// on every read from position and the queue's average service time, never stored.
type TicketWithETA struct {
	Ticket
	ETA int `json:"eta"`
}

// IsActive reports whether the ticket still holds a position in its queue.
func (t *Ticket) IsActive() bool {
	return t.Status == TicketStatusActive
}
