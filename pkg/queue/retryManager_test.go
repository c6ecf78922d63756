package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShouldRetryRespectsMaxAttempts(t *testing.T) {
	rm := NewRetryManager(3, time.Second)

	task := &Task{ID: "t1", Type: TaskTypeSendAlert, Attempts: 3, MaxRetries: 3}
	retry, _ := rm.ShouldRetry(task, errors.New("connection refused"))
	assert.False(t, retry)

	task.Attempts = 1
	retry, delay := rm.ShouldRetry(task, errors.New("connection refused"))
	assert.True(t, retry)
	assert.Greater(t, delay, time.Duration(0))
}

func TestShouldRetrySkipsNonRetryableErrors(t *testing.T) {
	rm := NewRetryManager(3, time.Second)
	task := &Task{ID: "t1", Type: TaskTypeSendAlert, Attempts: 1, MaxRetries: 3}

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "invalid payload", err: errors.New("invalid destination for channel email"), want: false},
		{name: "missing entity", err: errors.New("ticket not found"), want: false},
		{name: "validation", err: errors.New("validation failed on message"), want: false},
		{name: "transient network", err: errors.New("dial tcp: connection refused"), want: true},
		{name: "smtp busy", err: errors.New("451 temporary failure"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			retry, _ := rm.ShouldRetry(task, tt.err)
			assert.Equal(t, tt.want, retry)
		})
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	base := time.Second
	rm := NewRetryManager(10, base)

	prevMax := time.Duration(0)
	for attempt := 1; attempt <= 8; attempt++ {
		delay := rm.calculateBackoff(attempt)

		// Jitter makes the exact delay nondeterministic, so bound a
		// window around the exponential curve instead.
		expected := base * time.Duration(1<<(attempt-1))
		if expected > base*16 {
			expected = base * 16
		}
		assert.GreaterOrEqual(t, delay, expected/2)
		assert.LessOrEqual(t, delay, base*16+base*8)

		if expected > prevMax {
			prevMax = expected
		}
	}
}

func TestTaskValidate(t *testing.T) {
	task := &Task{ID: "t1", Type: TaskTypeSendAlert}
	assert.NoError(t, task.Validate())
	assert.NotNil(t, task.Data)

	assert.Error(t, (&Task{Type: TaskTypeSendAlert}).Validate())
	assert.Error(t, (&Task{ID: "t2"}).Validate())
}
