package jobs

import (
	"context"
	"fmt"

	"github.com/spec-kit/linkbio-service/internal/domain"
)

// VisitRecorder persists the visit row and the atomic counter bump.
type VisitRecorder interface {
	RecordVisit(ctx context.Context, linkID int64, visit domain.Visit) error
}

// ClickService records link clicks delivered through the queue.
type ClickService struct {
	links VisitRecorder
}

// NewClickService builds the service.
func NewClickService(links VisitRecorder) *ClickService {
	return &ClickService{links: links}
}

// Record inserts one visit and increments the link's click counter by one.
func (s *ClickService) Record(ctx context.Context, payload ClickPayload) error {
	if payload.LinkID <= 0 {
		return fmt.Errorf("invalid link id %d", payload.LinkID)
	}
	visit := domain.Visit{
		Referrer:  optional(payload.Referrer),
		UserAgent: optional(payload.UserAgent),
		Country:   optional(payload.Country),
	}
	return s.links.RecordVisit(ctx, payload.LinkID, visit)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
