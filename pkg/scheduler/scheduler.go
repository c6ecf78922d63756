package scheduler

import (
	"context"
	"time"
)

// Job is one unit of periodic work.
type Job interface {
	Run(ctx context.Context)
}

// Scheduler runs a job on a fixed interval until the context is cancelled.
type Scheduler struct {
	job      Job
	interval time.Duration
}

func NewScheduler(job Job, interval time.Duration) *Scheduler {
	return &Scheduler{
		job:      job,
		interval: interval,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.job.Run(ctx)
		case <-ctx.Done():
			return
		}
	}
}
