package service

import (
	"context"
	"fmt"
	"time"

	repository "queueline-app/internal/database/postgres"
	"queueline-app/internal/entity"

	"github.com/sirupsen/logrus"
)

// CreateQueueRequest represents the data needed to create a queue
type CreateQueueRequest struct {
	BusinessID     int64  `json:"business_id" binding:"required"`
	Name           string `json:"name" binding:"required,min=1,max=255"`
	AvgServiceTime int    `json:"avg_service_time" binding:"min=0,max=1440"`
}

// UpdateQueueRequest represents the data needed to update a queue
type UpdateQueueRequest struct {
	Name           *string `json:"name,omitempty"`
	AvgServiceTime *int    `json:"avg_service_time,omitempty"`
	IsActive       *bool   `json:"is_active,omitempty"`
}

// QueueCache is the optional read cache in front of queue lookups.
type QueueCache interface {
	GetQueue(ctx context.Context, queueID int64) (*entity.Queue, error)
	SetQueue(ctx context.Context, queue *entity.Queue) error
	GetQueueSize(ctx context.Context, queueID int64) (int, error)
	SetQueueSize(ctx context.Context, queueID int64, size int) error
	Invalidate(ctx context.Context, queueID int64) error
}

type queueService struct {
	queueRepo  repository.QueueRepository
	ticketRepo repository.TicketRepository
	cache      QueueCache

	defaultAvgServiceTime int
}

// NewQueueService creates a new instance of QueueService. cache may be nil.
func NewQueueService(
	queueRepo repository.QueueRepository,
	ticketRepo repository.TicketRepository,
	cache QueueCache,
	defaultAvgServiceTime int,
) QueueService {
	if defaultAvgServiceTime < 1 {
		defaultAvgServiceTime = 5
	}
	return &queueService{
		queueRepo:             queueRepo,
		ticketRepo:            ticketRepo,
		cache:                 cache,
		defaultAvgServiceTime: defaultAvgServiceTime,
	}
}

func (s *queueService) CreateQueue(ctx context.Context, req *CreateQueueRequest) (*entity.Queue, error) {
	avgServiceTime := req.AvgServiceTime
	if avgServiceTime == 0 {
		avgServiceTime = s.defaultAvgServiceTime
	}
	if avgServiceTime < 1 {
		return nil, fmt.Errorf("%w: avg_service_time must be positive", entity.ErrInvalidInput)
	}

	queue := &entity.Queue{
		BusinessID:     req.BusinessID,
		Name:           req.Name,
		AvgServiceTime: avgServiceTime,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if err := s.queueRepo.Create(ctx, queue); err != nil {
		return nil, fmt.Errorf("failed to create queue: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"queue_id":    queue.ID,
		"business_id": queue.BusinessID,
	}).Info("Queue created")

	return queue, nil
}

func (s *queueService) GetQueue(ctx context.Context, id int64) (*entity.QueueWithSize, error) {
	queue, err := s.getQueue(ctx, id)
	if err != nil {
		return nil, err
	}

	size, err := s.CurrentSize(ctx, id)
	if err != nil {
		return nil, err
	}

	return &entity.QueueWithSize{Queue: *queue, Size: size}, nil
}

func (s *queueService) GetBusinessQueues(ctx context.Context, businessID int64) ([]*entity.QueueWithSize, error) {
	queues, err := s.queueRepo.GetByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to get business queues: %w", err)
	}

	result := make([]*entity.QueueWithSize, 0, len(queues))
	for _, queue := range queues {
		size, err := s.CurrentSize(ctx, queue.ID)
		if err != nil {
			return nil, err
		}
		result = append(result, &entity.QueueWithSize{Queue: *queue, Size: size})
	}

	return result, nil
}

func (s *queueService) UpdateQueue(ctx context.Context, id int64, req *UpdateQueueRequest) (*entity.Queue, error) {
	queue, err := s.queueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", entity.ErrInvalidInput)
		}
		queue.Name = *req.Name
	}
	if req.AvgServiceTime != nil {
		if *req.AvgServiceTime < 1 {
			return nil, fmt.Errorf("%w: avg_service_time must be positive", entity.ErrInvalidInput)
		}
		queue.AvgServiceTime = *req.AvgServiceTime
	}
	if req.IsActive != nil {
		queue.IsActive = *req.IsActive
	}
	queue.UpdatedAt = time.Now()

	if err := s.queueRepo.Update(ctx, queue); err != nil {
		return nil, fmt.Errorf("failed to update queue: %w", err)
	}

	s.invalidateCache(ctx, id)

	return queue, nil
}

func (s *queueService) DeactivateQueue(ctx context.Context, id int64) error {
	if err := s.queueRepo.Deactivate(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx, id)

	logrus.WithField("queue_id", id).Info("Queue deactivated")
	return nil
}

func (s *queueService) CurrentSize(ctx context.Context, queueID int64) (int, error) {
	if s.cache != nil {
		if size, err := s.cache.GetQueueSize(ctx, queueID); err == nil {
			return size, nil
		}
	}

	size, err := s.ticketRepo.CountActive(ctx, queueID)
	if err != nil {
		return 0, fmt.Errorf("failed to count active tickets: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetQueueSize(ctx, queueID, size); err != nil {
			logrus.Warnf("Failed to cache queue size for queue %d: %v", queueID, err)
		}
	}

	return size, nil
}

func (s *queueService) AvgServiceTime(ctx context.Context, queueID int64) (int, error) {
	queue, err := s.getQueue(ctx, queueID)
	if err != nil {
		return 0, err
	}
	return queue.AvgServiceTime, nil
}

func (s *queueService) getQueue(ctx context.Context, id int64) (*entity.Queue, error) {
	if s.cache != nil {
		if queue, err := s.cache.GetQueue(ctx, id); err == nil {
			return queue, nil
		}
	}

	queue, err := s.queueRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetQueue(ctx, queue); err != nil {
			logrus.Warnf("Failed to cache queue %d: %v", id, err)
		}
	}

	return queue, nil
}

func (s *queueService) invalidateCache(ctx context.Context, queueID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, queueID); err != nil {
		logrus.Warnf("Failed to invalidate cache for queue %d: %v", queueID, err)
	}
}
