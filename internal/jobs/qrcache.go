package jobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/blob"
)

// ProfileQRUpdater overwrites the cached QR URL columns on a profile.
type ProfileQRUpdater interface {
	UpdateQRFields(ctx context.Context, userID int64, wechatQRURL, groupQRURL *string) error
}

// QRCacheService fetches an external QR image, stores it in the blob store
// and points the profile at the cached copy. Concurrent jobs for the same
// field are last-write-wins.
type QRCacheService struct {
	blobs      blob.Store
	users      ProfileQRUpdater
	httpClient *http.Client
	publicBase string
	logger     *zap.Logger
}

// NewQRCacheService builds the service. A nil blob store means the binding
// is absent and jobs no-op. A nil http client gets a default with a timeout.
func NewQRCacheService(blobs blob.Store, users ProfileQRUpdater, httpClient *http.Client, publicBase string, logger *zap.Logger) *QRCacheService {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if publicBase == "" {
		publicBase = "/cdn/"
	}
	return &QRCacheService{
		blobs:      blobs,
		users:      users,
		httpClient: httpClient,
		publicBase: publicBase,
		logger:     logger,
	}
}

// Cache runs one qr-cache job.
func (s *QRCacheService) Cache(ctx context.Context, payload QRCachePayload) error {
	if s.blobs == nil {
		s.logger.Warn("skip qr cache job, blob store missing", zap.String("handle", payload.Handle))
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, payload.SourceURL, nil)
	if err != nil {
		return fmt.Errorf("build qr source request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch qr source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("unable to fetch qr source",
			zap.String("url", payload.SourceURL),
			zap.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read qr source body: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}

	filename := fmt.Sprintf("%s-%d.%s", payload.Target, time.Now().UnixMilli(), extensionFor(contentType))
	key := fmt.Sprintf("qr/%s/%s", payload.Handle, filename)

	if err := s.blobs.Put(ctx, key, contentType, body); err != nil {
		if errors.Is(err, blob.ErrUnavailable) {
			s.logger.Warn("skip qr cache job, blob store missing", zap.String("handle", payload.Handle))
			return nil
		}
		return fmt.Errorf("store qr image: %w", err)
	}

	publicURL := s.publicBase + key
	switch payload.Target {
	case QRTargetWechat:
		return s.users.UpdateQRFields(ctx, payload.UserID, &publicURL, nil)
	case QRTargetGroup:
		return s.users.UpdateQRFields(ctx, payload.UserID, nil, &publicURL)
	default:
		return fmt.Errorf("unknown qr target %q", payload.Target)
	}
}

func extensionFor(contentType string) string {
	switch {
	case strings.Contains(contentType, "svg"):
		return "svg"
	case strings.Contains(contentType, "jpeg"):
		return "jpg"
	case strings.Contains(contentType, "webp"):
		return "webp"
	default:
		return "png"
	}
}
