package worker_test

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/jobs"
	"github.com/spec-kit/linkbio-service/internal/observability"
	"github.com/spec-kit/linkbio-service/internal/queue"
	"github.com/spec-kit/linkbio-service/internal/worker"
)

type scriptedSource struct {
	batches [][][]byte
	index   int
	cancel  context.CancelFunc
}

// Next hands out scripted batches, then cancels the run context so the
// loop winds down like a real shutdown.
func (s *scriptedSource) Next(ctx context.Context) ([][]byte, error) {
	if s.index >= len(s.batches) {
		s.cancel()
		return nil, ctx.Err()
	}
	batch := s.batches[s.index]
	s.index++
	return batch, nil
}

type unavailableSource struct{}

func (unavailableSource) Next(context.Context) ([][]byte, error) {
	return nil, queue.ErrUnavailable
}

type countingBackups struct {
	runs atomic.Int64
}

func (c *countingBackups) Run(context.Context) (jobs.BackupResult, error) {
	c.runs.Add(1)
	return jobs.BackupResult{}, nil
}

type noopClicks struct{}

func (noopClicks) Record(context.Context, jobs.ClickPayload) error { return nil }

type noopQR struct{}

func (noopQR) Cache(context.Context, jobs.QRCachePayload) error { return nil }

func waitDone(t *testing.T, r *worker.Runner) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		r.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunnerProcessesBatchesUntilCancel(t *testing.T) {
	backups := &countingBackups{}
	processor := jobs.NewProcessor(backups, noopClicks{}, noopQR{}, observability.NewMetrics(), zap.NewNop())

	raw, err := json.Marshal(jobs.NewDailyBackupJob())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	source := &scriptedSource{
		batches: [][][]byte{{raw, raw}, nil, {raw}},
		cancel:  cancel,
	}
	r := worker.NewRunner(source, processor, nil, zap.NewNop())
	r.Start(ctx)
	waitDone(t, r)

	// Two batches carry jobs, the empty one is skipped without processing.
	assert.Equal(t, int64(3), backups.runs.Load())
}

func TestRunnerStopsWhenQueueUnavailable(t *testing.T) {
	processor := jobs.NewProcessor(&countingBackups{}, noopClicks{}, noopQR{}, observability.NewMetrics(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := worker.NewRunner(unavailableSource{}, processor, nil, zap.NewNop())
	r.Start(ctx)
	waitDone(t, r)
}

func TestRunnerRunsSchedulerAlongsideConsumer(t *testing.T) {
	backups := &countingBackups{}
	processor := jobs.NewProcessor(backups, noopClicks{}, noopQR{}, observability.NewMetrics(), zap.NewNop())
	scheduler := jobs.NewScheduler(nil, time.Hour, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	source := &scriptedSource{cancel: cancel}
	r := worker.NewRunner(source, processor, scheduler, zap.NewNop())
	r.Start(ctx)
	waitDone(t, r)
}
