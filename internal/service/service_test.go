package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
	"github.com/magnusoverli/sushe-online-sub003/internal/validation"
)

// recordingCache captures invalidation fan-out so tests can assert who got
// invalidated without running a real worker.
type recordingCache struct {
	mu    sync.Mutex
	calls []string
}

func (c *recordingCache) EmitUser(reason, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, reason+":"+userID)
}

func (c *recordingCache) sorted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := append([]string(nil), c.calls...)
	sort.Strings(out)
	return out
}

func (c *recordingCache) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = nil
}

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "sushe-service-test-*")
	require.NoError(t, err)

	st, err := store.New(tmpDir, logger.Discard(), store.NewNoopEmitter())
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		os.RemoveAll(tmpDir)
	}
	return st, cleanup
}

func seedUser(t *testing.T, st *store.Store, id, username string) {
	t.Helper()
	require.NoError(t, st.PutUser(context.Background(), &domain.User{ID: id, Username: username}))
}

func seedList(t *testing.T, st *store.Store, id, userID, name string, year int) {
	t.Helper()
	require.NoError(t, st.PutList(context.Background(), &domain.List{
		ID:     id,
		UserID: userID,
		Name:   name,
		Year:   year,
	}))
}

func seedAlbum(t *testing.T, st *store.Store, album *domain.Album) {
	t.Helper()
	require.NoError(t, st.UpsertAlbum(context.Background(), album))
}

func seedRows(t *testing.T, st *store.Store, listID string, rows []domain.ListRow) {
	t.Helper()
	require.NoError(t, st.PutListRows(context.Background(), listID, rows))
}

// testCover renders a small PNG so cover-dependent scoring has real bytes
// to look at.
func testCover(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.RGBA{R: uint8(40 * x), G: uint8(40 * y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// at builds a fixed row timestamp; recency decides identifier precedence
// inside a duplicate group, so tests pin it explicitly.
func at(hour int) time.Time {
	return time.Date(2016, time.January, 10, hour, 0, 0, 0, time.UTC)
}

func newTestDedup(st *store.Store, cache CacheEmitter) *DedupService {
	return NewDedupService(st, cache, validation.New(), logger.Discard())
}

func newTestReconcile(st *store.Store) *ReconcileService {
	return NewReconcileService(st, logger.Discard())
}

func newTestMerge(st *store.Store, cache CacheEmitter) *MergeService {
	return NewMergeService(st, cache, validation.New(), logger.Discard())
}
