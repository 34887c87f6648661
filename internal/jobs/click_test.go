package jobs_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/linkbio-service/internal/domain"
	"github.com/spec-kit/linkbio-service/internal/jobs"
)

type fakeVisitRecorder struct {
	linkID int64
	visit  domain.Visit
	calls  int
}

func (f *fakeVisitRecorder) RecordVisit(_ context.Context, linkID int64, visit domain.Visit) error {
	f.linkID = linkID
	f.visit = visit
	f.calls++
	return nil
}

func TestClickRecordPersistsVisit(t *testing.T) {
	links := &fakeVisitRecorder{}
	svc := jobs.NewClickService(links)

	err := svc.Record(context.Background(), jobs.ClickPayload{
		LinkID:    5,
		Handle:    "alice",
		Referrer:  "https://twitter.com",
		UserAgent: "Mozilla/5.0",
		Country:   "DE",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), links.linkID)
	require.NotNil(t, links.visit.Referrer)
	assert.Equal(t, "https://twitter.com", *links.visit.Referrer)
	require.NotNil(t, links.visit.Country)
	assert.Equal(t, "DE", *links.visit.Country)
}

func TestClickRecordOmitsEmptyMetadata(t *testing.T) {
	links := &fakeVisitRecorder{}
	svc := jobs.NewClickService(links)

	err := svc.Record(context.Background(), jobs.ClickPayload{LinkID: 5})
	require.NoError(t, err)
	assert.Nil(t, links.visit.Referrer)
	assert.Nil(t, links.visit.UserAgent)
	assert.Nil(t, links.visit.Country)
}

func TestClickRecordRejectsInvalidLinkID(t *testing.T) {
	links := &fakeVisitRecorder{}
	svc := jobs.NewClickService(links)

	for _, id := range []int64{0, -1} {
		err := svc.Record(context.Background(), jobs.ClickPayload{LinkID: id})
		require.Error(t, err)
	}
	assert.Zero(t, links.calls)
}
