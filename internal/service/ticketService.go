package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	repository "queueline-app/internal/database/postgres"
	"queueline-app/internal/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UpdateAlertPrefsRequest represents the data needed to configure alerts on a ticket
type UpdateAlertPrefsRequest struct {
	Enabled    bool     `json:"enabled"`
	Threshold  int      `json:"threshold"`
	Channels   []string `json:"channels"`
	Email      string   `json:"email,omitempty"`
	TelegramID string   `json:"telegram_id,omitempty"`
}

type ticketService struct {
	ticketRepo repository.TicketRepository
	queueRepo  repository.QueueRepository
	cache      QueueCache

	defaultThreshold int

	mu         sync.Mutex
	queueLocks map[int64]*sync.Mutex
}

// NewTicketService creates a new instance of TicketService. cache may be nil.
func NewTicketService(
	ticketRepo repository.TicketRepository,
	queueRepo repository.QueueRepository,
	cache QueueCache,
	defaultThreshold int,
) TicketService {
	if defaultThreshold < 1 {
		defaultThreshold = 3
	}
	return &ticketService{
		ticketRepo:       ticketRepo,
		queueRepo:        queueRepo,
		cache:            cache,
		defaultThreshold: defaultThreshold,
		queueLocks:       make(map[int64]*sync.Mutex),
	}
}

// lockQueue serializes mutations of a single queue. The database transaction
// guarantees atomicity; the lock keeps the check-then-mutate sequences of one
// queue from interleaving.
func (s *ticketService) lockQueue(queueID int64) func() {
	s.mu.Lock()
	lock, ok := s.queueLocks[queueID]
	if !ok {
		lock = &sync.Mutex{}
		s.queueLocks[queueID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func (s *ticketService) Join(ctx context.Context, queueID, userID int64) (*entity.TicketWithETA, error) {
	queue, err := s.queueRepo.GetByID(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if !queue.IsActive {
		return nil, entity.ErrQueueInactive
	}

	unlock := s.lockQueue(queueID)
	defer unlock()

	ticket := &entity.Ticket{
		TicketID:       uuid.NewString(),
		QueueID:        queueID,
		UserID:         userID,
		Status:         entity.TicketStatusActive,
		JoinTime:       time.Now(),
		AlertThreshold: s.defaultThreshold,
	}

	if err := s.ticketRepo.Create(ctx, ticket); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, queueID)

	logrus.WithFields(logrus.Fields{
		"ticket_id": ticket.TicketID,
		"queue_id":  queueID,
		"user_id":   userID,
		"position":  ticket.Position,
	}).Info("User joined queue")

	return &entity.TicketWithETA{
		Ticket: *ticket,
		ETA:    ComputeETA(ticket.Position, queue.AvgServiceTime),
	}, nil
}

func (s *ticketService) Cancel(ctx context.Context, ticketID string, userID int64) error {
	ticket, err := s.ticketRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.UserID != userID {
		return entity.ErrUnauthorized
	}

	unlock := s.lockQueue(ticket.QueueID)
	defer unlock()

	// Re-read under the lock: serve-next may have advanced the queue since
	// the ownership check.
	ticket, err = s.ticketRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		return err
	}
	if !ticket.IsActive() {
		return entity.ErrTicketNotFound
	}
	if ticket.Position == 1 {
		return entity.ErrCannotCancelWhenNext
	}

	if _, err := s.ticketRepo.Finish(ctx, ticketID, entity.TicketStatusCancelled); err != nil {
		return err
	}

	s.invalidateCache(ctx, ticket.QueueID)

	logrus.WithFields(logrus.Fields{
		"ticket_id": ticketID,
		"queue_id":  ticket.QueueID,
	}).Info("Ticket cancelled")

	return nil
}

func (s *ticketService) ServeNext(ctx context.Context, queueID int64) (*entity.Ticket, error) {
	if _, err := s.queueRepo.GetByID(ctx, queueID); err != nil {
		return nil, err
	}

	unlock := s.lockQueue(queueID)
	defer unlock()

	ticket, err := s.ticketRepo.FinishFirst(ctx, queueID, entity.TicketStatusCompleted)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, queueID)

	logrus.WithFields(logrus.Fields{
		"ticket_id": ticket.TicketID,
		"queue_id":  queueID,
		"wait_time": ticket.WaitTime.Int64,
	}).Info("Ticket served")

	return ticket, nil
}

func (s *ticketService) Get(ctx context.Context, ticketID string, userID int64) (*entity.TicketWithETA, error) {
	ticket, err := s.ticketRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.UserID != userID {
		return nil, entity.ErrUnauthorized
	}

	return s.withETA(ctx, ticket)
}

func (s *ticketService) GetActiveForUser(ctx context.Context, userID int64) (*entity.TicketWithETA, error) {
	ticket, err := s.ticketRepo.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active ticket: %w", err)
	}
	if ticket == nil {
		return nil, entity.ErrTicketNotFound
	}

	return s.withETA(ctx, ticket)
}

func (s *ticketService) GetHistoryForUser(ctx context.Context, userID int64, limit int) ([]*entity.Ticket, error) {
	return s.ticketRepo.GetHistoryByUser(ctx, userID, limit)
}

func (s *ticketService) ListQueueTickets(ctx context.Context, queueID int64) ([]*entity.Ticket, error) {
	if _, err := s.queueRepo.GetByID(ctx, queueID); err != nil {
		return nil, err
	}
	return s.ticketRepo.ListActiveByQueue(ctx, queueID)
}

func (s *ticketService) UpdateAlertPrefs(ctx context.Context, ticketID string, userID int64, req *UpdateAlertPrefsRequest) error {
	ticket, err := s.ticketRepo.GetByTicketID(ctx, ticketID)
	if err != nil {
		return err
	}
	if ticket.UserID != userID {
		return entity.ErrUnauthorized
	}
	if !ticket.IsActive() {
		return entity.ErrTicketNotFound
	}

	threshold := req.Threshold
	if threshold == 0 {
		threshold = s.defaultThreshold
	}
	if threshold < 1 {
		return fmt.Errorf("%w: threshold must be positive", entity.ErrInvalidInput)
	}

	channels := make(entity.AlertChannels, 0, len(req.Channels))
	for _, raw := range req.Channels {
		channel, err := entity.ParseAlertChannel(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", entity.ErrInvalidInput, err)
		}
		channels = append(channels, channel)
	}

	if req.Enabled {
		if len(channels) == 0 {
			return fmt.Errorf("%w: at least one channel is required", entity.ErrInvalidInput)
		}
		if channels.Contains(entity.ChannelEmail) && req.Email == "" {
			return fmt.Errorf("%w: email channel requires an email address", entity.ErrInvalidInput)
		}
		if channels.Contains(entity.ChannelTelegram) && req.TelegramID == "" {
			return fmt.Errorf("%w: telegram channel requires a chat id", entity.ErrInvalidInput)
		}
	}

	if err := s.ticketRepo.UpdateAlertPrefs(ctx, ticketID, req.Enabled, threshold,
		channels, req.Email, req.TelegramID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"ticket_id": ticketID,
		"enabled":   req.Enabled,
		"threshold": threshold,
	}).Info("Alert preferences updated")

	return nil
}

func (s *ticketService) withETA(ctx context.Context, ticket *entity.Ticket) (*entity.TicketWithETA, error) {
	eta := 0
	if ticket.IsActive() {
		queue, err := s.queueRepo.GetByID(ctx, ticket.QueueID)
		if err != nil {
			return nil, err
		}
		eta = ComputeETA(ticket.Position, queue.AvgServiceTime)
	}
	return &entity.TicketWithETA{Ticket: *ticket, ETA: eta}, nil
}

func (s *ticketService) invalidateCache(ctx context.Context, queueID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, queueID); err != nil {
		logrus.Warnf("Failed to invalidate cache for queue %d: %v", queueID, err)
	}
}
