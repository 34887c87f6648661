// Package jobs contains the queue job union, the batch processor, and the
// background handlers for backups, click metrics and QR caching.
package jobs

import "encoding/json"

// Kind discriminates queued jobs.
type Kind string

const (
	KindDailyBackup     Kind = "daily-backup"
	KindRecordLinkClick Kind = "record-link-click"
	KindQRCache         Kind = "qr-cache"
)

// QRTarget selects which profile QR field a qr-cache job refreshes.
type QRTarget string

const (
	QRTargetWechat QRTarget = "wechat"
	QRTargetGroup  QRTarget = "group"
)

// Envelope is the wire form of a queued job: a kind tag plus the
// kind-specific payload. Jobs are immutable once enqueued.
type Envelope struct {
	Type    Kind            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ClickPayload records one click on a link.
type ClickPayload struct {
	LinkID    int64  `json:"linkId"`
	Handle    string `json:"handle,omitempty"`
	Referrer  string `json:"referrer,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Country   string `json:"country,omitempty"`
}

// QRCachePayload asks the worker to cache an external QR image.
type QRCachePayload struct {
	UserID    int64    `json:"userId"`
	Handle    string   `json:"handle"`
	Target    QRTarget `json:"target"`
	SourceURL string   `json:"sourceUrl"`
}

// NewDailyBackupJob builds a daily-backup envelope.
func NewDailyBackupJob() Envelope {
	return Envelope{Type: KindDailyBackup}
}

// NewClickJob builds a record-link-click envelope.
func NewClickJob(payload ClickPayload) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: KindRecordLinkClick, Payload: body}, nil
}

// NewQRCacheJob builds a qr-cache envelope.
func NewQRCacheJob(payload QRCachePayload) (Envelope, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: KindQRCache, Payload: body}, nil
}
