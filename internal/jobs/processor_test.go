package jobs_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/jobs"
	"github.com/spec-kit/linkbio-service/internal/observability"
)

type fakeBackups struct {
	runs int
	err  error
}

func (f *fakeBackups) Run(context.Context) (jobs.BackupResult, error) {
	f.runs++
	return jobs.BackupResult{Key: "backups/test.json"}, f.err
}

type fakeClicks struct {
	recorded []jobs.ClickPayload
	err      error
	panics   bool
}

func (f *fakeClicks) Record(_ context.Context, payload jobs.ClickPayload) error {
	if f.panics {
		panic("click handler exploded")
	}
	f.recorded = append(f.recorded, payload)
	return f.err
}

type fakeQR struct {
	cached []jobs.QRCachePayload
	err    error
}

func (f *fakeQR) Cache(_ context.Context, payload jobs.QRCachePayload) error {
	f.cached = append(f.cached, payload)
	return f.err
}

func marshalEnvelope(t *testing.T, env jobs.Envelope) []byte {
	t.Helper()
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	return raw
}

func backupMessage(t *testing.T) []byte {
	t.Helper()
	return marshalEnvelope(t, jobs.NewDailyBackupJob())
}

func clickMessage(t *testing.T, payload jobs.ClickPayload) []byte {
	t.Helper()
	env, err := jobs.NewClickJob(payload)
	require.NoError(t, err)
	return marshalEnvelope(t, env)
}

func qrMessage(t *testing.T, payload jobs.QRCachePayload) []byte {
	t.Helper()
	env, err := jobs.NewQRCacheJob(payload)
	require.NoError(t, err)
	return marshalEnvelope(t, env)
}

func TestProcessorDispatchesByKind(t *testing.T) {
	backups := &fakeBackups{}
	clicks := &fakeClicks{}
	qr := &fakeQR{}
	metrics := observability.NewMetrics()
	p := jobs.NewProcessor(backups, clicks, qr, metrics, zap.NewNop())

	batch := [][]byte{
		backupMessage(t),
		clickMessage(t, jobs.ClickPayload{LinkID: 5, Handle: "alice"}),
		qrMessage(t, jobs.QRCachePayload{
			UserID: 7, Handle: "alice", Target: jobs.QRTargetWechat, SourceURL: "https://qr.example/a.png",
		}),
	}
	p.Process(context.Background(), batch)

	assert.Equal(t, 1, backups.runs)
	require.Len(t, clicks.recorded, 1)
	assert.Equal(t, int64(5), clicks.recorded[0].LinkID)
	require.Len(t, qr.cached, 1)
	assert.Equal(t, jobs.QRTargetWechat, qr.cached[0].Target)

	assert.Equal(t, int64(1), metrics.JobCount(string(jobs.KindDailyBackup), true))
	assert.Equal(t, int64(1), metrics.JobCount(string(jobs.KindRecordLinkClick), true))
	assert.Equal(t, int64(1), metrics.JobCount(string(jobs.KindQRCache), true))
}

func TestProcessorIsolatesFailures(t *testing.T) {
	backups := &fakeBackups{}
	clicks := &fakeClicks{err: errors.New("db down")}
	qr := &fakeQR{}
	metrics := observability.NewMetrics()
	p := jobs.NewProcessor(backups, clicks, qr, metrics, zap.NewNop())

	batch := [][]byte{
		backupMessage(t),
		clickMessage(t, jobs.ClickPayload{LinkID: 5}),
		qrMessage(t, jobs.QRCachePayload{
			UserID: 7, Handle: "alice", Target: jobs.QRTargetGroup, SourceURL: "https://qr.example/g.png",
		}),
	}
	p.Process(context.Background(), batch)

	// The failing click job still leaves its siblings attempted exactly once.
	assert.Equal(t, 1, backups.runs)
	assert.Len(t, qr.cached, 1)
	assert.Equal(t, int64(1), metrics.JobCount(string(jobs.KindRecordLinkClick), false))
	assert.Equal(t, int64(0), metrics.JobCount(string(jobs.KindRecordLinkClick), true))
}

func TestProcessorRecoversPanics(t *testing.T) {
	backups := &fakeBackups{}
	clicks := &fakeClicks{panics: true}
	qr := &fakeQR{}
	metrics := observability.NewMetrics()
	p := jobs.NewProcessor(backups, clicks, qr, metrics, zap.NewNop())

	batch := [][]byte{
		backupMessage(t),
		clickMessage(t, jobs.ClickPayload{LinkID: 5}),
		backupMessage(t),
	}
	require.NotPanics(t, func() {
		p.Process(context.Background(), batch)
	})

	assert.Equal(t, 2, backups.runs)
	assert.Equal(t, int64(1), metrics.JobCount(string(jobs.KindRecordLinkClick), false))
}

func TestProcessorSkipsBadMessages(t *testing.T) {
	backups := &fakeBackups{}
	clicks := &fakeClicks{}
	qr := &fakeQR{}
	metrics := observability.NewMetrics()
	p := jobs.NewProcessor(backups, clicks, qr, metrics, zap.NewNop())

	batch := [][]byte{
		[]byte("{not json"),
		[]byte(`{"type":"compact-database"}`),
		[]byte(`{"type":"record-link-click","payload":{"linkId":"not-a-number"}}`),
		backupMessage(t),
	}
	p.Process(context.Background(), batch)

	// Undecodable and unknown messages are dropped; the decodable job runs.
	assert.Equal(t, 1, backups.runs)
	assert.Empty(t, clicks.recorded)
	assert.Empty(t, qr.cached)
	assert.Equal(t, int64(1), metrics.JobCount(string(jobs.KindRecordLinkClick), false))
	assert.Equal(t, int64(1), metrics.JobCount(string(jobs.KindDailyBackup), true))
}
