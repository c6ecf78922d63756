package service

import (
	"context"

	"queueline-app/pkg/queue"
)

// QueueAdapter adapts queue.Queue to the TaskPublisher interface
type QueueAdapter struct {
	queue queue.Queue
}

// NewQueueAdapter creates a new adapter over the delivery queue
func NewQueueAdapter(q queue.Queue) *QueueAdapter {
	return &QueueAdapter{queue: q}
}

// PublishAlert converts a service.AlertTask into a queue.Task and publishes it
func (a *QueueAdapter) PublishAlert(ctx context.Context, task *AlertTask) error {
	if a.queue == nil {
		return nil // queue not configured, alerts are dropped
	}

	queueTask := &queue.Task{
		Type: queue.TaskTypeSendAlert,
		Data: map[string]interface{}{
			"ticket_id":   task.TicketID,
			"user_id":     task.UserID,
			"channel":     string(task.Channel),
			"destination": task.Destination,
			"message":     task.Message,
		},
	}

	return a.queue.Publish(ctx, queueTask)
}
