// Package store persists albums, lists, list rows, match exclusions and
// merge audit events in a single Badger database. Values are JSON; key
// layouts are documented where each entity lives. Writes that change what
// other users can see emit cache invalidation events through the
// EventEmitter seam and refresh the search index asynchronously.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/cache"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
)

// EventEmitter is the interface for emitting cache invalidation events.
// Store uses this to broadcast changes without depending on the fanout
// implementation.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer is the interface for keeping the album search index in sync
// with store changes. Index updates are performed asynchronously so they
// never block store operations.
type SearchIndexer interface {
	IndexAlbum(ctx context.Context, album *domain.Album) error
	DeleteAlbum(ctx context.Context, albumID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexAlbum is a no-op.
func (NoopSearchIndexer) IndexAlbum(context.Context, *domain.Album) error { return nil }

// DeleteAlbum is a no-op.
func (NoopSearchIndexer) DeleteAlbum(context.Context, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *logger.Logger

	// Invalidation event emitter for broadcasting changes.
	eventEmitter EventEmitter

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular
	// dependencies (store needs to exist before search can be built).
	searchIndexer SearchIndexer
}

// New creates a Store backed by the database at path. The emitter is
// required and receives an invalidation event for every write that can
// stale another user's cached view.
func New(path string, log *logger.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	store := &Store{
		db:           db,
		logger:       log,
		eventEmitter: emitter,
	}

	if log != nil {
		log.Info("badger database opened", "path", path)
	}

	return store, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

// Helper methods for database operations.

// getInto unmarshals the value at key within txn. Callers translate
// badger.ErrKeyNotFound themselves.
func getInto(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}

	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		return getInto(txn, key, dest)
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// indexAlbumAsync refreshes the search document for an album without
// blocking the write that changed it.
func (s *Store) indexAlbumAsync(album *domain.Album) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.IndexAlbum(context.Background(), album); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("failed to index album", "album_id", album.ID)
		}
	}()
}

// deindexAlbumAsync drops an album's search document without blocking the
// write that removed it.
func (s *Store) deindexAlbumAsync(albumID string) {
	if s.searchIndexer == nil {
		return
	}
	go func() {
		if err := s.searchIndexer.DeleteAlbum(context.Background(), albumID); err != nil && s.logger != nil {
			s.logger.WithError(err).Warn("failed to deindex album", "album_id", albumID)
		}
	}()
}

// emitUserInvalidations queues one invalidation event per user.
func (s *Store) emitUserInvalidations(reason string, userIDs []string) {
	for _, userID := range userIDs {
		s.eventEmitter.Emit(cache.NewUserInvalidation(reason, userID))
	}
}

// sortedKeys returns a set's members in lexicographic order so results are
// deterministic.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
