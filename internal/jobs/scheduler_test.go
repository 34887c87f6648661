package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/jobs"
	"github.com/spec-kit/linkbio-service/internal/queue"
)

type fakeEnqueuer struct {
	enqueued []any
	err      error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, job any) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func TestSchedulerTriggerEnqueuesBackupJob(t *testing.T) {
	publisher := &fakeEnqueuer{}
	s := jobs.NewScheduler(publisher, time.Hour, zap.NewNop())

	s.Trigger(context.Background())

	require.Len(t, publisher.enqueued, 1)
	env, ok := publisher.enqueued[0].(jobs.Envelope)
	require.True(t, ok)
	assert.Equal(t, jobs.KindDailyBackup, env.Type)
	assert.Empty(t, env.Payload)
}

func TestSchedulerTriggerWithoutQueueIsNoop(t *testing.T) {
	s := jobs.NewScheduler(nil, time.Hour, zap.NewNop())

	assert.NotPanics(t, func() {
		s.Trigger(context.Background())
	})
}

func TestSchedulerTriggerToleratesUnavailableQueue(t *testing.T) {
	publisher := &fakeEnqueuer{err: queue.ErrUnavailable}
	s := jobs.NewScheduler(publisher, time.Hour, zap.NewNop())

	assert.NotPanics(t, func() {
		s.Trigger(context.Background())
	})
	assert.Empty(t, publisher.enqueued)
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	publisher := &fakeEnqueuer{}
	s := jobs.NewScheduler(publisher, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop after cancel")
	}
}
