package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"queueline-app/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, destination, message string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, destination)
	return nil
}

type fakeRecorder struct {
	notifications []*entity.Notification
}

func (f *fakeRecorder) Create(_ context.Context, n *entity.Notification) error {
	f.notifications = append(f.notifications, n)
	return nil
}

func alertTask(channel, destination string) *Task {
	return &Task{
		ID:   "task-1",
		Type: TaskTypeSendAlert,
		Data: map[string]interface{}{
			"ticket_id":   "abc-123",
			"user_id":     float64(42), // json numbers decode to float64
			"channel":     channel,
			"destination": destination,
			"message":     "Your turn is approaching! You are position #2 in the queue.",
		},
	}
}

func TestHandleSendAlertEmail(t *testing.T) {
	sender := &fakeSender{}
	recorder := &fakeRecorder{}
	handler := NewTaskHandler(map[entity.AlertChannel]Sender{
		entity.ChannelEmail: sender,
	}, recorder, nil)

	err := handler.HandleTask(alertTask("email", "user@example.com"))
	require.NoError(t, err)

	assert.Equal(t, []string{"user@example.com"}, sender.sent)
	require.Len(t, recorder.notifications, 1)
	assert.Equal(t, int64(42), recorder.notifications[0].UserID)
	assert.Equal(t, entity.ChannelEmail, recorder.notifications[0].Channel)
	assert.Equal(t, entity.NotificationStatusSent, recorder.notifications[0].Status)
}

func TestHandleSendAlertBrowserNeedsNoSender(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := NewTaskHandler(nil, recorder, nil)

	err := handler.HandleTask(alertTask("browser", ""))
	require.NoError(t, err)

	require.Len(t, recorder.notifications, 1)
	assert.Equal(t, entity.ChannelBrowser, recorder.notifications[0].Channel)
	assert.Equal(t, entity.NotificationStatusSent, recorder.notifications[0].Status)
}

func TestHandleSendAlertFailureIsRecorded(t *testing.T) {
	sender := &fakeSender{err: errors.New("smtp: connection refused")}
	recorder := &fakeRecorder{}
	handler := NewTaskHandler(map[entity.AlertChannel]Sender{
		entity.ChannelEmail: sender,
	}, recorder, nil)

	err := handler.HandleTask(alertTask("email", "user@example.com"))
	require.Error(t, err)

	require.Len(t, recorder.notifications, 1)
	assert.Equal(t, entity.NotificationStatusFailed, recorder.notifications[0].Status)
}

func TestHandleSendAlertRejectsBadPayload(t *testing.T) {
	handler := NewTaskHandler(nil, &fakeRecorder{}, nil)

	assert.Error(t, handler.HandleTask(alertTask("pigeon", "x")))
	assert.Error(t, handler.HandleTask(alertTask("telegram", "12345"))) // no sender configured

	missing := alertTask("browser", "")
	delete(missing.Data, "message")
	assert.Error(t, handler.HandleTask(missing))

	unknown := &Task{ID: "t", Type: "mystery", Data: map[string]interface{}{}}
	assert.Error(t, handler.HandleTask(unknown))
}

type fakeHistory struct {
	cutoff time.Time
	purged int64
}

func (f *fakeHistory) PurgeFinishedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return f.purged, nil
}

func TestHandlePurgeHistory(t *testing.T) {
	history := &fakeHistory{purged: 7}
	handler := NewTaskHandler(nil, nil, history)

	cutoff := time.Now().AddDate(0, 0, -30).Truncate(time.Second)
	task := &Task{
		ID:   "purge-1",
		Type: TaskTypePurgeHistory,
		Data: map[string]interface{}{"before": cutoff.Format(time.RFC3339)},
	}

	require.NoError(t, handler.HandleTask(task))
	assert.WithinDuration(t, cutoff, history.cutoff, time.Second)
}
