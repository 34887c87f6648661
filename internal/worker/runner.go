// Package worker runs the queue consumer loop and the backup scheduler.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/jobs"
	"github.com/spec-kit/linkbio-service/internal/queue"
)

// BatchSource yields the next delivered batch of raw job messages.
type BatchSource interface {
	Next(ctx context.Context) ([][]byte, error)
}

// Runner owns the consume loop and the scheduler goroutine. One batch is
// in flight at a time within a runner; scaling out means running more
// worker processes, which is why handlers rely on store-level atomicity.
type Runner struct {
	consumer  BatchSource
	processor *jobs.Processor
	scheduler *jobs.Scheduler
	logger    *zap.Logger
	wg        sync.WaitGroup
}

// NewRunner wires the loop.
func NewRunner(consumer BatchSource, processor *jobs.Processor, scheduler *jobs.Scheduler, logger *zap.Logger) *Runner {
	return &Runner{consumer: consumer, processor: processor, scheduler: scheduler, logger: logger}
}

// Start launches the scheduler and the consume loop. Non-blocking.
func (r *Runner) Start(ctx context.Context) {
	if r.scheduler != nil {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.scheduler.Run(ctx)
		}()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.consume(ctx)
	}()
}

// Wait blocks until both loops exit after context cancellation.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) consume(ctx context.Context) {
	r.logger.Info("job consumer started")
	for {
		if ctx.Err() != nil {
			r.logger.Info("job consumer stopped")
			return
		}

		batch, err := r.consumer.Next(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if errors.Is(err, queue.ErrUnavailable) {
				r.logger.Warn("queue unavailable, stopping consumer")
				return
			}
			r.logger.Error("fetch batch", zap.Error(err))
			continue
		}
		if len(batch) == 0 {
			continue
		}

		r.logger.Debug("processing batch", zap.Int("jobs", len(batch)))
		r.processor.Process(ctx, batch)
	}
}
