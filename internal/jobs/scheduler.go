package jobs

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/queue"
)

// Enqueuer places jobs on the queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, job any) error
}

// Scheduler fires on a fixed interval and enqueues a daily-backup job.
// Fire-and-forget: it never waits for the job to complete.
type Scheduler struct {
	publisher Enqueuer
	interval  time.Duration
	logger    *zap.Logger
}

// NewScheduler builds the scheduler. A nil publisher means the queue
// binding is absent and triggers no-op.
func NewScheduler(publisher Enqueuer, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Scheduler{publisher: publisher, interval: interval, logger: logger}
}

// Run blocks until the context is cancelled, triggering once per interval.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("backup scheduler started", zap.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("backup scheduler stopped")
			return
		case <-ticker.C:
			s.Trigger(ctx)
		}
	}
}

// Trigger enqueues a single daily-backup job if a queue is bound.
func (s *Scheduler) Trigger(ctx context.Context) {
	if s.publisher == nil {
		s.logger.Debug("no queue bound, skip backup trigger")
		return
	}
	if err := s.publisher.Enqueue(ctx, NewDailyBackupJob()); err != nil {
		if errors.Is(err, queue.ErrUnavailable) {
			s.logger.Warn("queue unavailable, skip backup trigger")
			return
		}
		s.logger.Error("enqueue backup job", zap.Error(err))
		return
	}
	s.logger.Info("daily backup job enqueued")
}
