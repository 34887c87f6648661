package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/blob"
	"github.com/spec-kit/linkbio-service/internal/domain"
)

// UserExporter loads the full user collection for a backup run.
type UserExporter interface {
	ExportAll(ctx context.Context) ([]domain.UserExport, error)
}

// BackupResult reports what a backup run produced.
type BackupResult struct {
	Key     string
	Size    int
	Skipped bool
}

type backupDocument struct {
	GeneratedAt time.Time           `json:"generatedAt"`
	TotalUsers  int                 `json:"totalUsers"`
	Users       []domain.UserExport `json:"users"`
}

// BackupService dumps the entire user collection to the blob store.
// Best-effort: a missing blob binding yields a skipped result, not an error.
type BackupService struct {
	users  UserExporter
	blobs  blob.Store
	logger *zap.Logger
}

// NewBackupService builds the service. A nil blob store means the binding
// is absent.
func NewBackupService(users UserExporter, blobs blob.Store, logger *zap.Logger) *BackupService {
	return &BackupService{users: users, blobs: blobs, logger: logger}
}

var backupKeyReplacer = strings.NewReplacer(":", "-", ".", "-")

// Run serializes all users with a generation timestamp and writes one blob
// per invocation; keys embed the timestamp so runs never overwrite.
func (s *BackupService) Run(ctx context.Context) (BackupResult, error) {
	if s.blobs == nil {
		s.logger.Warn("blob store unavailable, skip backup run")
		return BackupResult{Skipped: true}, nil
	}

	users, err := s.users.ExportAll(ctx)
	if err != nil {
		return BackupResult{}, err
	}

	now := time.Now().UTC()
	doc := backupDocument{
		GeneratedAt: now,
		TotalUsers:  len(users),
		Users:       users,
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return BackupResult{}, err
	}

	key := "backups/" + backupKeyReplacer.Replace(now.Format("2006-01-02T15:04:05.000")) + "Z.json"
	if err := s.blobs.Put(ctx, key, "application/json", body); err != nil {
		if errors.Is(err, blob.ErrUnavailable) {
			s.logger.Warn("blob store unavailable, skip backup run")
			return BackupResult{Skipped: true}, nil
		}
		return BackupResult{}, err
	}

	s.logger.Info("backup written",
		zap.String("key", key),
		zap.Int("users", len(users)),
		zap.Int("size", len(body)))
	return BackupResult{Key: key, Size: len(body)}, nil
}
