package queue

import (
	"context"
)

// Queue is the async task queue interface
type Queue interface {
	Publish(ctx context.Context, task *Task) error
	Subscribe(ctx context.Context, handler func(*Task) error) error
	Close() error
}
