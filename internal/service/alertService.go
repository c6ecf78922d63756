package service

import (
	"context"
	"fmt"

	repository "queueline-app/internal/database/postgres"
	"queueline-app/internal/entity"

	"github.com/sirupsen/logrus"
)

// AlertTask describes one notification to deliver over one channel. Delivery
// is asynchronous: the sweep publishes tasks, the queue consumer sends them.
type AlertTask struct {
	TicketID    string
	UserID      int64
	Channel     entity.AlertChannel
	Destination string
	Message     string
}

// TaskPublisher hands alert tasks to the delivery queue.
type TaskPublisher interface {
	PublishAlert(ctx context.Context, task *AlertTask) error
}

type alertService struct {
	ticketRepo repository.TicketRepository
	publisher  TaskPublisher
}

// NewAlertService creates a new instance of AlertService
func NewAlertService(ticketRepo repository.TicketRepository, publisher TaskPublisher) AlertService {
	return &alertService{
		ticketRepo: ticketRepo,
		publisher:  publisher,
	}
}

// SweepOnce finds tickets whose position has reached their alert threshold
// and dispatches one task per configured channel. A ticket is marked before
// its tasks are published, so a crash mid-sweep can lose an alert but never
// duplicate one; delivery retries live in the queue, not here.
func (s *alertService) SweepOnce(ctx context.Context) (int, error) {
	candidates, err := s.ticketRepo.ListAlertCandidates(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list alert candidates: %w", err)
	}

	dispatched := 0
	for _, ticket := range candidates {
		marked, err := s.ticketRepo.MarkAlertSent(ctx, ticket.TicketID)
		if err != nil {
			logrus.Errorf("Failed to mark alert sent for ticket %s: %v", ticket.TicketID, err)
			continue
		}
		if !marked {
			// Another sweep got there first.
			continue
		}

		message := fmt.Sprintf("Your turn is approaching! You are position #%d in the queue.",
			ticket.Position)

		published := 0
		for _, channel := range ticket.AlertChannels {
			destination := ""
			switch channel {
			case entity.ChannelEmail:
				destination = ticket.AlertEmail
			case entity.ChannelTelegram:
				destination = ticket.AlertTelegramID
			}
			if channel != entity.ChannelBrowser && destination == "" {
				logrus.WithFields(logrus.Fields{
					"ticket_id": ticket.TicketID,
					"channel":   channel,
				}).Warn("Skipping alert channel without a destination")
				continue
			}

			task := &AlertTask{
				TicketID:    ticket.TicketID,
				UserID:      ticket.UserID,
				Channel:     channel,
				Destination: destination,
				Message:     message,
			}
			if err := s.publisher.PublishAlert(ctx, task); err != nil {
				logrus.Errorf("Failed to publish %s alert for ticket %s: %v",
					channel, ticket.TicketID, err)
				continue
			}
			published++
		}

		if published > 0 {
			dispatched++
			logrus.WithFields(logrus.Fields{
				"ticket_id": ticket.TicketID,
				"position":  ticket.Position,
				"channels":  published,
			}).Info("Alert dispatched")
		}
	}

	return dispatched, nil
}
