package jobs_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/linkbio-service/internal/jobs"
)

type fakeQRUpdater struct {
	userID int64
	wechat *string
	group  *string
	calls  int
}

func (f *fakeQRUpdater) UpdateQRFields(_ context.Context, userID int64, wechatQRURL, groupQRURL *string) error {
	f.userID = userID
	f.wechat = wechatQRURL
	f.group = groupQRURL
	f.calls++
	return nil
}

func qrImageServer(t *testing.T, contentType string, status int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte("qr-bytes"))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestQRCacheStoresImageAndUpdatesProfile(t *testing.T) {
	server := qrImageServer(t, "image/png", http.StatusOK)
	store := newMemBlobStore()
	updater := &fakeQRUpdater{}
	svc := jobs.NewQRCacheService(store, updater, server.Client(), "/cdn/", zap.NewNop())

	err := svc.Cache(context.Background(), jobs.QRCachePayload{
		UserID: 7, Handle: "alice", Target: jobs.QRTargetWechat, SourceURL: server.URL,
	})
	require.NoError(t, err)

	keys := store.keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "qr/alice/wechat-"), keys[0])
	assert.True(t, strings.HasSuffix(keys[0], ".png"), keys[0])

	obj, err := store.Get(context.Background(), keys[0])
	require.NoError(t, err)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Equal(t, []byte("qr-bytes"), obj.Body)

	assert.Equal(t, int64(7), updater.userID)
	require.NotNil(t, updater.wechat)
	assert.Equal(t, "/cdn/"+keys[0], *updater.wechat)
	assert.Nil(t, updater.group)
}

func TestQRCacheGroupTargetSetsGroupField(t *testing.T) {
	server := qrImageServer(t, "image/png", http.StatusOK)
	store := newMemBlobStore()
	updater := &fakeQRUpdater{}
	svc := jobs.NewQRCacheService(store, updater, server.Client(), "", zap.NewNop())

	err := svc.Cache(context.Background(), jobs.QRCachePayload{
		UserID: 7, Handle: "alice", Target: jobs.QRTargetGroup, SourceURL: server.URL,
	})
	require.NoError(t, err)

	assert.Nil(t, updater.wechat)
	require.NotNil(t, updater.group)
	assert.True(t, strings.HasPrefix(*updater.group, "/cdn/qr/alice/group-"), *updater.group)
}

func TestQRCacheExtensionFollowsContentType(t *testing.T) {
	cases := map[string]string{
		"image/svg+xml": ".svg",
		"image/jpeg":    ".jpg",
		"image/webp":    ".webp",
		"":              ".png",
	}
	for contentType, ext := range cases {
		server := qrImageServer(t, contentType, http.StatusOK)
		store := newMemBlobStore()
		updater := &fakeQRUpdater{}
		svc := jobs.NewQRCacheService(store, updater, server.Client(), "/cdn/", zap.NewNop())

		err := svc.Cache(context.Background(), jobs.QRCachePayload{
			UserID: 7, Handle: "alice", Target: jobs.QRTargetWechat, SourceURL: server.URL,
		})
		require.NoError(t, err)
		keys := store.keys()
		require.Len(t, keys, 1)
		assert.True(t, strings.HasSuffix(keys[0], ext), "%q should yield %s, got %s", contentType, ext, keys[0])
	}
}

func TestQRCacheSkipsFailedFetch(t *testing.T) {
	server := qrImageServer(t, "image/png", http.StatusNotFound)
	store := newMemBlobStore()
	updater := &fakeQRUpdater{}
	svc := jobs.NewQRCacheService(store, updater, server.Client(), "/cdn/", zap.NewNop())

	err := svc.Cache(context.Background(), jobs.QRCachePayload{
		UserID: 7, Handle: "alice", Target: jobs.QRTargetWechat, SourceURL: server.URL,
	})
	require.NoError(t, err)
	assert.Empty(t, store.keys())
	assert.Zero(t, updater.calls)
}

func TestQRCacheSkipsWithoutBlobStore(t *testing.T) {
	updater := &fakeQRUpdater{}
	svc := jobs.NewQRCacheService(nil, updater, nil, "/cdn/", zap.NewNop())

	err := svc.Cache(context.Background(), jobs.QRCachePayload{
		UserID: 7, Handle: "alice", Target: jobs.QRTargetWechat, SourceURL: "https://qr.example/a.png",
	})
	require.NoError(t, err)
	assert.Zero(t, updater.calls)
}

func TestQRCacheRejectsUnknownTarget(t *testing.T) {
	server := qrImageServer(t, "image/png", http.StatusOK)
	store := newMemBlobStore()
	updater := &fakeQRUpdater{}
	svc := jobs.NewQRCacheService(store, updater, server.Client(), "/cdn/", zap.NewNop())

	err := svc.Cache(context.Background(), jobs.QRCachePayload{
		UserID: 7, Handle: "alice", Target: "banner", SourceURL: server.URL,
	})
	require.Error(t, err)
	assert.Zero(t, updater.calls)
}
