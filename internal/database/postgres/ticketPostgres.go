package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"queueline-app/internal/entity"

	"github.com/lib/pq"
)

const ticketColumns = `
	id, ticket_id, queue_id, user_id, position, status, join_time, leave_time,
	wait_time, alerts_enabled, alert_threshold, alert_channels, alert_email,
	alert_telegram_id, alerts_sent`

// Partial unique index backing the one-active-ticket-per-user invariant.
// Must match the name used in pkg/postgres migrations.
const uniqueActiveUserIdx = "idx_history_user_active"

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && pqErr.Code == "23505" && pqErr.Constraint == constraint
}

type ticketRepository struct {
	db *sql.DB
}

func NewTicketRepository(db *sql.DB) TicketRepository {
	return &ticketRepository{db: db}
}

// Create inserts a new active ticket with transaction to ensure position density
// and the one-active-ticket-per-user invariant are checked atomically with the
// insert itself.
func (r *ticketRepository) Create(ctx context.Context, ticket *entity.Ticket) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", entity.ErrStorage, err)
	}
	defer tx.Rollback()

	// Re-validate the queue inside the transaction: a deactivation that lands
	// after the service-level check must not admit a new ticket. FOR SHARE
	// blocks a concurrent UPDATE of the queue row until we commit.
	var isActive bool
	query := `SELECT is_active FROM queues WHERE id = $1 FOR SHARE`
	err = tx.QueryRowContext(ctx, query, ticket.QueueID).Scan(&isActive)
	if err == sql.ErrNoRows {
		return entity.ErrQueueNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: failed to check queue: %v", entity.ErrStorage, err)
	}
	if !isActive {
		return entity.ErrQueueInactive
	}

	// Reject if the user already holds an active ticket in any queue. This is
	// the fast path; the partial unique index on (user_id) WHERE active is the
	// authority when two joins race.
	var existing int
	query = `SELECT COUNT(*) FROM queue_history WHERE user_id = $1 AND status = 'active'`
	err = tx.QueryRowContext(ctx, query, ticket.UserID).Scan(&existing)
	if err != nil {
		return fmt.Errorf("%w: failed to check active tickets: %v", entity.ErrStorage, err)
	}
	if existing > 0 {
		return entity.ErrAlreadyQueued
	}

	// Positions are dense, so COUNT(active) + 1 is the next free position
	var activeCount int
	query = `SELECT COUNT(*) FROM queue_history WHERE queue_id = $1 AND status = 'active'`
	err = tx.QueryRowContext(ctx, query, ticket.QueueID).Scan(&activeCount)
	if err != nil {
		return fmt.Errorf("%w: failed to count active tickets: %v", entity.ErrStorage, err)
	}

	now := time.Now()
	ticket.Position = activeCount + 1
	ticket.Status = entity.TicketStatusActive
	ticket.JoinTime = now

	query = `
		INSERT INTO queue_history (
			ticket_id, queue_id, user_id, position, status, join_time,
			alerts_enabled, alert_threshold, alert_channels, alert_email,
			alert_telegram_id, alerts_sent
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err = tx.QueryRowContext(ctx, query,
		ticket.TicketID,
		ticket.QueueID,
		ticket.UserID,
		ticket.Position,
		ticket.Status,
		ticket.JoinTime,
		ticket.AlertsEnabled,
		ticket.AlertThreshold,
		ticket.AlertChannels,
		ticket.AlertEmail,
		ticket.AlertTelegramID,
		ticket.AlertsSent,
	).Scan(&ticket.ID)

	if isUniqueViolation(err, uniqueActiveUserIdx) {
		return entity.ErrAlreadyQueued
	}
	if err != nil {
		return fmt.Errorf("%w: failed to create ticket: %v", entity.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		if isUniqueViolation(err, uniqueActiveUserIdx) {
			return entity.ErrAlreadyQueued
		}
		return fmt.Errorf("%w: failed to commit transaction: %v", entity.ErrStorage, err)
	}

	return nil
}

func (r *ticketRepository) GetByTicketID(ctx context.Context, ticketID string) (*entity.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM queue_history
		WHERE ticket_id = $1
	`

	ticket, err := scanTicketRow(r.db.QueryRowContext(ctx, query, ticketID))
	if err == sql.ErrNoRows {
		return nil, entity.ErrTicketNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get ticket: %v", entity.ErrStorage, err)
	}

	return ticket, nil
}

// GetActiveByUser returns nil, nil when the user has no active ticket.
func (r *ticketRepository) GetActiveByUser(ctx context.Context, userID int64) (*entity.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM queue_history
		WHERE user_id = $1 AND status = 'active'
		LIMIT 1
	`

	ticket, err := scanTicketRow(r.db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get active ticket by user: %v", entity.ErrStorage, err)
	}

	return ticket, nil
}

func (r *ticketRepository) GetHistoryByUser(ctx context.Context, userID int64, limit int) ([]*entity.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM queue_history
		WHERE user_id = $1
		ORDER BY join_time DESC
		LIMIT $2
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query user history: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

func (r *ticketRepository) ListActiveByQueue(ctx context.Context, queueID int64) ([]*entity.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM queue_history
		WHERE queue_id = $1 AND status = 'active'
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, queueID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query active tickets: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

func (r *ticketRepository) CountActive(ctx context.Context, queueID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM queue_history WHERE queue_id = $1 AND status = 'active'`
	err := r.db.QueryRowContext(ctx, query, queueID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to count active tickets: %v", entity.ErrStorage, err)
	}
	return count, nil
}

func (r *ticketRepository) Finish(ctx context.Context, ticketID string, status entity.TicketStatus) (*entity.Ticket, error) {
	return r.finish(ctx, func(tx *sql.Tx) (*entity.Ticket, error) {
		query := `SELECT` + ticketColumns + `
			FROM queue_history
			WHERE ticket_id = $1 AND status = 'active'
			FOR UPDATE
		`
		ticket, err := scanTicketRow(tx.QueryRowContext(ctx, query, ticketID))
		if err == sql.ErrNoRows {
			return nil, entity.ErrTicketNotFound
		}
		return ticket, err
	}, status)
}

func (r *ticketRepository) FinishFirst(ctx context.Context, queueID int64, status entity.TicketStatus) (*entity.Ticket, error) {
	return r.finish(ctx, func(tx *sql.Tx) (*entity.Ticket, error) {
		query := `SELECT` + ticketColumns + `
			FROM queue_history
			WHERE queue_id = $1 AND status = 'active'
			ORDER BY position
			LIMIT 1
			FOR UPDATE
		`
		ticket, err := scanTicketRow(tx.QueryRowContext(ctx, query, queueID))
		if err == sql.ErrNoRows {
			return nil, entity.ErrQueueEmpty
		}
		return ticket, err
	}, status)
}

// finish moves the selected active ticket to a terminal status and closes the
// position gap it leaves behind. The status update and the bulk renumbering
// commit together or not at all, so readers never observe gapped or duplicate
// positions.
func (r *ticketRepository) finish(ctx context.Context, select_ func(*sql.Tx) (*entity.Ticket, error), status entity.TicketStatus) (*entity.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{
		Isolation: sql.LevelReadCommitted,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to begin transaction: %v", entity.ErrStorage, err)
	}
	defer tx.Rollback()

	ticket, err := select_(tx)
	if err != nil {
		return nil, err
	}

	// Wait time is whole minutes, truncated
	leaveTime := time.Now()
	waitTime := int64(leaveTime.Sub(ticket.JoinTime).Minutes())

	query := `
		UPDATE queue_history
		SET status = $1, leave_time = $2, wait_time = $3
		WHERE id = $4
	`
	if _, err := tx.ExecContext(ctx, query, status, leaveTime, waitTime, ticket.ID); err != nil {
		return nil, fmt.Errorf("%w: failed to update ticket status: %v", entity.ErrStorage, err)
	}

	query = `
		UPDATE queue_history
		SET position = position - 1
		WHERE queue_id = $1 AND status = 'active' AND position > $2
	`
	if _, err := tx.ExecContext(ctx, query, ticket.QueueID, ticket.Position); err != nil {
		return nil, fmt.Errorf("%w: failed to renumber positions: %v", entity.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: failed to commit transaction: %v", entity.ErrStorage, err)
	}

	ticket.Status = status
	ticket.LeaveTime = sql.NullTime{Time: leaveTime, Valid: true}
	ticket.WaitTime = sql.NullInt64{Int64: waitTime, Valid: true}

	return ticket, nil
}

func (r *ticketRepository) UpdateAlertPrefs(ctx context.Context, ticketID string, enabled bool, threshold int,
	channels entity.AlertChannels, email, telegramID string) error {

	query := `
		UPDATE queue_history
		SET alerts_enabled = $1, alert_threshold = $2, alert_channels = $3,
		    alert_email = $4, alert_telegram_id = $5
		WHERE ticket_id = $6
	`

	result, err := r.db.ExecContext(ctx, query, enabled, threshold, channels, email, telegramID, ticketID)
	if err != nil {
		return fmt.Errorf("%w: failed to update alert preferences: %v", entity.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", entity.ErrStorage, err)
	}
	if rowsAffected == 0 {
		return entity.ErrTicketNotFound
	}

	return nil
}

// ListAlertCandidates returns active tickets that are armed and have crossed
// their threshold but have not been alerted yet.
func (r *ticketRepository) ListAlertCandidates(ctx context.Context) ([]*entity.Ticket, error) {
	query := `SELECT` + ticketColumns + `
		FROM queue_history
		WHERE status = 'active'
		  AND alerts_enabled = TRUE
		  AND alerts_sent = FALSE
		  AND position <= alert_threshold
		ORDER BY queue_id, position
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query alert candidates: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// MarkAlertSent flips alerts_sent exactly once. The conditional update makes
// concurrent sweeps race-safe: only the caller that sees rowsAffected == 1 may
// dispatch notifications for the ticket.
func (r *ticketRepository) MarkAlertSent(ctx context.Context, ticketID string) (bool, error) {
	query := `
		UPDATE queue_history
		SET alerts_sent = TRUE
		WHERE ticket_id = $1 AND alerts_sent = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, ticketID)
	if err != nil {
		return false, fmt.Errorf("%w: failed to mark alert sent: %v", entity.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: failed to get rows affected: %v", entity.ErrStorage, err)
	}

	return rowsAffected == 1, nil
}

func (r *ticketRepository) PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM queue_history
		WHERE status IN ('completed', 'cancelled') AND leave_time < $1
	`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to purge finished tickets: %v", entity.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get rows affected: %v", entity.ErrStorage, err)
	}

	return rowsAffected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTicketRow(row rowScanner) (*entity.Ticket, error) {
	var ticket entity.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.QueueID,
		&ticket.UserID,
		&ticket.Position,
		&ticket.Status,
		&ticket.JoinTime,
		&ticket.LeaveTime,
		&ticket.WaitTime,
		&ticket.AlertsEnabled,
		&ticket.AlertThreshold,
		&ticket.AlertChannels,
		&ticket.AlertEmail,
		&ticket.AlertTelegramID,
		&ticket.AlertsSent,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows *sql.Rows) ([]*entity.Ticket, error) {
	var tickets []*entity.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan ticket: %v", entity.ErrStorage, err)
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate tickets: %v", entity.ErrStorage, err)
	}

	return tickets, nil
}
