package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"queueline-app/internal/entity"
)

type queueRepository struct {
	db *sql.DB
}

func NewQueueRepository(db *sql.DB) QueueRepository {
	return &queueRepository{db: db}
}

func (r *queueRepository) Create(ctx context.Context, queue *entity.Queue) error {
	query := `
		INSERT INTO queues (business_id, name, avg_service_time, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, $4, $5)
		RETURNING id
	`

	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		queue.BusinessID,
		queue.Name,
		queue.AvgServiceTime,
		now,
		now,
	).Scan(&queue.ID)

	if err != nil {
		return fmt.Errorf("%w: failed to create queue: %v", entity.ErrStorage, err)
	}

	queue.IsActive = true
	queue.CreatedAt = now
	queue.UpdatedAt = now

	return nil
}

func (r *queueRepository) GetByID(ctx context.Context, id int64) (*entity.Queue, error) {
	query := `
		SELECT id, business_id, name, avg_service_time, is_active, created_at, updated_at
		FROM queues
		WHERE id = $1
	`

	var queue entity.Queue
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&queue.ID,
		&queue.BusinessID,
		&queue.Name,
		&queue.AvgServiceTime,
		&queue.IsActive,
		&queue.CreatedAt,
		&queue.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, entity.ErrQueueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get queue: %v", entity.ErrStorage, err)
	}

	return &queue, nil
}

func (r *queueRepository) GetByBusiness(ctx context.Context, businessID int64) ([]*entity.Queue, error) {
	query := `
		SELECT id, business_id, name, avg_service_time, is_active, created_at, updated_at
		FROM queues
		WHERE business_id = $1 AND is_active = TRUE
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query queues by business: %v", entity.ErrStorage, err)
	}
	defer rows.Close()

	var queues []*entity.Queue
	for rows.Next() {
		var queue entity.Queue
		err := rows.Scan(
			&queue.ID,
			&queue.BusinessID,
			&queue.Name,
			&queue.AvgServiceTime,
			&queue.IsActive,
			&queue.CreatedAt,
			&queue.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan queue: %v", entity.ErrStorage, err)
		}
		queues = append(queues, &queue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: failed to iterate queues: %v", entity.ErrStorage, err)
	}

	return queues, nil
}

func (r *queueRepository) Update(ctx context.Context, queue *entity.Queue) error {
	query := `
		UPDATE queues
		SET name = $1, avg_service_time = $2, is_active = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecContext(ctx, query,
		queue.Name,
		queue.AvgServiceTime,
		queue.IsActive,
		time.Now(),
		queue.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: failed to update queue: %v", entity.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", entity.ErrStorage, err)
	}
	if rowsAffected == 0 {
		return entity.ErrQueueNotFound
	}

	return nil
}

// Deactivate soft-deletes the queue. Active tickets keep their positions and
// drain through serve-next or cancellation; new joins are rejected.
func (r *queueRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE queues SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND is_active = TRUE`

	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: failed to deactivate queue: %v", entity.ErrStorage, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: failed to get rows affected: %v", entity.ErrStorage, err)
	}
	if rowsAffected == 0 {
		return entity.ErrQueueNotFound
	}

	return nil
}
