package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
)

// Exclusions live under excl:<idLo>:<idHi> with the pair sorted, so both
// argument orders land on the same key.
const exclusionPrefix = "excl:"

// exclusionKey builds the symmetric pair key.
func exclusionKey(albumID1, albumID2 string) []byte {
	lo, hi := albumID1, albumID2
	if hi < lo {
		lo, hi = hi, lo
	}
	return []byte(exclusionPrefix + lo + ":" + hi)
}

// PutExclusion records that two albums must never be offered as a match for
// each other. Writing the same pair twice, in either order, is idempotent.
func (s *Store) PutExclusion(_ context.Context, pair domain.ExclusionPair) error {
	if pair.AlbumID1 == "" || pair.AlbumID2 == "" {
		return domainerrors.Validation("both album ids are required")
	}
	if pair.AlbumID1 == pair.AlbumID2 {
		return domainerrors.Validation("cannot exclude an album from itself")
	}

	pair = pair.Normalize()
	if pair.CreatedAt.IsZero() {
		pair.CreatedAt = time.Now().UTC()
	}

	if err := s.set(exclusionKey(pair.AlbumID1, pair.AlbumID2), &pair); err != nil {
		return fmt.Errorf("put exclusion %s/%s: %w", pair.AlbumID1, pair.AlbumID2, err)
	}
	return nil
}

// Exclusions returns every recorded pair in key order.
func (s *Store) Exclusions(_ context.Context) ([]domain.ExclusionPair, error) {
	var pairs []domain.ExclusionPair
	prefix := []byte(exclusionPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var pair domain.ExclusionPair
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &pair)
			})
			if err != nil {
				return fmt.Errorf("unmarshal exclusion %s: %w", string(it.Item().Key()), err)
			}
			pairs = append(pairs, pair)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pairs, nil
}

// Excluded reports whether the two albums form a recorded pair, regardless
// of argument order.
func (s *Store) Excluded(_ context.Context, albumID1, albumID2 string) (bool, error) {
	ok, err := s.exists(exclusionKey(albumID1, albumID2))
	if err != nil {
		return false, fmt.Errorf("check exclusion %s/%s: %w", albumID1, albumID2, err)
	}
	return ok, nil
}
