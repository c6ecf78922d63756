package repository

import (
	"context"
	"time"

	"queueline-app/internal/entity"
)

type QueueRepository interface {
	Create(ctx context.Context, queue *entity.Queue) error
	GetByID(ctx context.Context, id int64) (*entity.Queue, error)
	GetByBusiness(ctx context.Context, businessID int64) ([]*entity.Queue, error)
	Update(ctx context.Context, queue *entity.Queue) error
	Deactivate(ctx context.Context, id int64) error
}

type TicketRepository interface {
	// Create assigns the next dense position and inserts the ticket in one
	// transaction. Returns entity.ErrAlreadyQueued if the user already holds
	// an active ticket in any queue.
	Create(ctx context.Context, ticket *entity.Ticket) error

	GetByTicketID(ctx context.Context, ticketID string) (*entity.Ticket, error)
	GetActiveByUser(ctx context.Context, userID int64) (*entity.Ticket, error)
	GetHistoryByUser(ctx context.Context, userID int64, limit int) ([]*entity.Ticket, error)
	ListActiveByQueue(ctx context.Context, queueID int64) ([]*entity.Ticket, error)
	CountActive(ctx context.Context, queueID int64) (int, error)

	// Finish moves an active ticket to a terminal status and renumbers the
	// remaining active tickets of its queue, atomically.
	Finish(ctx context.Context, ticketID string, status entity.TicketStatus) (*entity.Ticket, error)
	// FinishFirst does the same for the ticket at position 1 of the queue.
	// Returns entity.ErrQueueEmpty if the queue has no active tickets.
	FinishFirst(ctx context.Context, queueID int64, status entity.TicketStatus) (*entity.Ticket, error)

	// PurgeFinishedBefore deletes completed and cancelled tickets whose
	// leave_time is before the cutoff. Returns the number of rows removed.
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Alert operations
	UpdateAlertPrefs(ctx context.Context, ticketID string, enabled bool, threshold int,
		channels entity.AlertChannels, email, telegramID string) error
	ListAlertCandidates(ctx context.Context) ([]*entity.Ticket, error)
	MarkAlertSent(ctx context.Context, ticketID string) (bool, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	GetByUser(ctx context.Context, userID int64, limit int) ([]*entity.Notification, error)
}
