package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"queueline-app/internal/entity"
)

// Sender delivers one message to one destination over a single channel.
type Sender interface {
	Send(ctx context.Context, destination, message string) error
}

// NotificationRecorder persists delivery outcomes so the browser channel can
// be polled and the other channels leave an audit trail.
type NotificationRecorder interface {
	Create(ctx context.Context, notification *entity.Notification) error
}

// HistoryStore purges old finished tickets.
type HistoryStore interface {
	PurgeFinishedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// TaskHandler consumes tasks from the queue
type TaskHandler struct {
	senders  map[entity.AlertChannel]Sender
	recorder NotificationRecorder
	history  HistoryStore
}

// NewTaskHandler creates a new task handler. senders maps the channels that
// need an outbound transport; the browser channel needs none.
func NewTaskHandler(
	senders map[entity.AlertChannel]Sender,
	recorder NotificationRecorder,
	history HistoryStore,
) *TaskHandler {
	if senders == nil {
		senders = make(map[entity.AlertChannel]Sender)
	}
	return &TaskHandler{
		senders:  senders,
		recorder: recorder,
		history:  history,
	}
}

// HandleTask dispatches a task by type
func (h *TaskHandler) HandleTask(task *Task) error {
	log.Printf("Handling task %s of type %s (attempt %d/%d)",
		task.ID, task.Type, task.Attempts, task.MaxRetries)

	switch task.Type {
	case TaskTypeSendAlert:
		return h.handleSendAlert(task)
	case TaskTypePurgeHistory:
		return h.handlePurgeHistory(task)
	default:
		return fmt.Errorf("unknown task type: %s", task.Type)
	}
}

// handleSendAlert delivers one alert over one channel and records the outcome
func (h *TaskHandler) handleSendAlert(task *Task) error {
	ctx := context.Background()

	channel, err := entity.ParseAlertChannel(task.GetString("channel"))
	if err != nil {
		return fmt.Errorf("invalid channel in task data: %v", err)
	}

	message := task.GetString("message")
	if message == "" {
		return fmt.Errorf("invalid message in task data")
	}

	userID := task.GetInt64("user_id")
	if userID == 0 {
		return fmt.Errorf("invalid user_id in task data")
	}

	destination := task.GetString("destination")

	var sendErr error
	if channel != entity.ChannelBrowser {
		sender, ok := h.senders[channel]
		if !ok {
			return fmt.Errorf("invalid channel %s: no sender configured", channel)
		}
		if destination == "" {
			return fmt.Errorf("invalid destination for channel %s", channel)
		}
		sendErr = sender.Send(ctx, destination, message)
	}

	status := entity.NotificationStatusSent
	if sendErr != nil {
		status = entity.NotificationStatusFailed
	}

	if h.recorder != nil {
		notification := &entity.Notification{
			UserID:    userID,
			Channel:   channel,
			Message:   message,
			Status:    status,
			CreatedAt: time.Now(),
		}
		if err := h.recorder.Create(ctx, notification); err != nil {
			log.Printf("Failed to record %s notification for user %d: %v", channel, userID, err)
		}
	}

	if sendErr != nil {
		return fmt.Errorf("failed to send %s alert for ticket %s: %v",
			channel, task.GetString("ticket_id"), sendErr)
	}

	log.Printf("Delivered %s alert for ticket %s to user %d",
		channel, task.GetString("ticket_id"), userID)
	return nil
}

// handlePurgeHistory removes finished tickets older than the cutoff
func (h *TaskHandler) handlePurgeHistory(task *Task) error {
	ctx := context.Background()

	if h.history == nil {
		return nil
	}

	cutoff := task.GetTime("before")
	if cutoff.IsZero() {
		// Default retention of 30 days.
		cutoff = time.Now().AddDate(0, 0, -30)
	}

	purged, err := h.history.PurgeFinishedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to purge history before %s: %v",
			cutoff.Format(time.RFC3339), err)
	}

	log.Printf("Purged %d finished tickets older than %s", purged, cutoff.Format(time.RFC3339))
	return nil
}
