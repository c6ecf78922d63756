package service

import (
	"context"

	"queueline-app/internal/entity"
)

// QueueService is the queue registry: queue definitions, soft deletion and the
// parameters the position engine needs (size, average service time).
type QueueService interface {
	CreateQueue(ctx context.Context, req *CreateQueueRequest) (*entity.Queue, error)
	GetQueue(ctx context.Context, id int64) (*entity.QueueWithSize, error)
	GetBusinessQueues(ctx context.Context, businessID int64) ([]*entity.QueueWithSize, error)
	UpdateQueue(ctx context.Context, id int64, req *UpdateQueueRequest) (*entity.Queue, error)
	DeactivateQueue(ctx context.Context, id int64) error

	CurrentSize(ctx context.Context, queueID int64) (int, error)
	AvgServiceTime(ctx context.Context, queueID int64) (int, error)
}

// TicketService is the ticket ledger. All mutations of one queue are
// serialized against each other; ownership and one-active-ticket checks run
// inside the same critical section as the mutation they guard.
type TicketService interface {
	Join(ctx context.Context, queueID, userID int64) (*entity.TicketWithETA, error)
	Cancel(ctx context.Context, ticketID string, userID int64) error
	ServeNext(ctx context.Context, queueID int64) (*entity.Ticket, error)

	Get(ctx context.Context, ticketID string, userID int64) (*entity.TicketWithETA, error)
	GetActiveForUser(ctx context.Context, userID int64) (*entity.TicketWithETA, error)
	GetHistoryForUser(ctx context.Context, userID int64, limit int) ([]*entity.Ticket, error)
	ListQueueTickets(ctx context.Context, queueID int64) ([]*entity.Ticket, error)

	UpdateAlertPrefs(ctx context.Context, ticketID string, userID int64, req *UpdateAlertPrefsRequest) error
}

// AlertService evaluates the armed → sent transition for alert-enabled
// tickets. SweepOnce is driven by the periodic scheduler and returns the
// number of tickets for which notifications were dispatched.
type AlertService interface {
	SweepOnce(ctx context.Context) (int, error)
}
