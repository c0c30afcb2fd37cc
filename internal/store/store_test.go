package store

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/magnusoverli/sushe-online-sub003/internal/cache"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
)

// setupTestStore creates a temporary store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "sushe-store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath, logger.Discard(), NewNoopEmitter())
	require.NoError(t, err)
	require.NotNil(t, s)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

// recordingEmitter captures invalidation events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	events []cache.Event
}

func (r *recordingEmitter) Emit(event any) {
	evt, ok := event.(cache.Event)
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recordingEmitter) patterns() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, evt := range r.events {
		out = append(out, evt.Pattern)
	}
	return out
}

func (r *recordingEmitter) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// setupTestStoreWithEmitter is setupTestStore plus a recording emitter, for
// tests that assert on invalidation fan-out.
func setupTestStoreWithEmitter(t *testing.T) (*Store, *recordingEmitter, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "sushe-store-test-*")
	require.NoError(t, err)

	emitter := &recordingEmitter{}
	s, err := New(filepath.Join(tmpDir, "test.db"), logger.Discard(), emitter)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}
	return s, emitter, cleanup
}

// Fixture helpers shared across the store tests.

func putTestUser(t *testing.T, s *Store, userID, username string) {
	t.Helper()
	require.NoError(t, s.PutUser(context.Background(), &domain.User{ID: userID, Username: username}))
}

func putTestList(t *testing.T, s *Store, listID, userID, name string, year int) {
	t.Helper()
	require.NoError(t, s.PutList(context.Background(), &domain.List{
		ID:     listID,
		UserID: userID,
		Name:   name,
		Year:   year,
	}))
}

func putTestAlbum(t *testing.T, s *Store, albumID, artist, title string) {
	t.Helper()
	require.NoError(t, s.UpsertAlbum(context.Background(), &domain.Album{
		ID:     albumID,
		Artist: artist,
		Album:  title,
	}))
}
