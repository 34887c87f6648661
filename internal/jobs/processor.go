package jobs

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/observability"
)

// BackupRunner runs one backup pass.
type BackupRunner interface {
	Run(ctx context.Context) (BackupResult, error)
}

// ClickRecorder persists one click event.
type ClickRecorder interface {
	Record(ctx context.Context, payload ClickPayload) error
}

// QRCacher caches one external QR image.
type QRCacher interface {
	Cache(ctx context.Context, payload QRCachePayload) error
}

// Processor consumes one delivered batch per invocation, dispatching each
// message by kind. Jobs run sequentially in delivery order; a failing job
// is logged and never prevents its siblings from being attempted.
type Processor struct {
	backups BackupRunner
	clicks  ClickRecorder
	qr      QRCacher
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewProcessor wires the handlers.
func NewProcessor(backups BackupRunner, clicks ClickRecorder, qr QRCacher, metrics *observability.Metrics, logger *zap.Logger) *Processor {
	return &Processor{backups: backups, clicks: clicks, qr: qr, metrics: metrics, logger: logger}
}

// Process attempts every message in the batch exactly once. It never
// returns an error: redelivery of failed jobs is left to the queue's
// native at-least-once semantics.
func (p *Processor) Process(ctx context.Context, batch [][]byte) {
	for _, raw := range batch {
		p.processOne(ctx, raw)
	}
}

func (p *Processor) processOne(ctx context.Context, raw []byte) {
	var kind Kind
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("job panicked",
				zap.String("kind", string(kind)),
				zap.ByteString("job", raw),
				zap.Any("panic", r))
			p.metrics.RecordJob(string(kind), false)
		}
	}()

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		p.logger.Error("undecodable job message", zap.ByteString("job", raw), zap.Error(err))
		return
	}
	kind = env.Type

	var err error
	switch env.Type {
	case KindDailyBackup:
		_, err = p.backups.Run(ctx)
	case KindRecordLinkClick:
		var payload ClickPayload
		if err = json.Unmarshal(env.Payload, &payload); err != nil {
			err = decodeError(env.Type, err)
		} else {
			err = p.clicks.Record(ctx, payload)
		}
	case KindQRCache:
		var payload QRCachePayload
		if err = json.Unmarshal(env.Payload, &payload); err != nil {
			err = decodeError(env.Type, err)
		} else {
			err = p.qr.Cache(ctx, payload)
		}
	default:
		p.logger.Warn("unknown job kind", zap.String("kind", string(env.Type)), zap.ByteString("job", raw))
		return
	}

	if err != nil {
		p.logger.Error("job failed",
			zap.String("kind", string(env.Type)),
			zap.ByteString("job", raw),
			zap.Error(err))
		p.metrics.RecordJob(string(env.Type), false)
		return
	}
	p.metrics.RecordJob(string(env.Type), true)
}

// decodeError keeps payload decode failures distinguishable in logs.
func decodeError(kind Kind, err error) error {
	return fmt.Errorf("decode %s payload: %w", kind, err)
}
