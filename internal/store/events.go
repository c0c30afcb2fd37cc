package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

// Merge audit events live under merge:event:<unixNano>:<eventID>. The
// timestamp is zero-padded so lexicographic key order is chronological
// order.
const mergeEventPrefix = "merge:event:"

// mergeEventKey builds the key for one audit event.
func mergeEventKey(ts time.Time, eventID string) []byte {
	return []byte(fmt.Sprintf("%s%020d:%s", mergeEventPrefix, ts.UnixNano(), eventID))
}

// appendMergeEvent writes an audit record inside an already-open merge
// transaction, so the event commits or aborts together with the merge.
func appendMergeEvent(txn *badger.Txn, event *domain.MergeEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal merge event: %w", err)
	}
	return txn.Set(mergeEventKey(event.Timestamp, event.ID), data)
}

// ListMergeEvents returns the merge audit trail, oldest first.
func (s *Store) ListMergeEvents(_ context.Context) ([]domain.MergeEvent, error) {
	var events []domain.MergeEvent
	prefix := []byte(mergeEventPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var event domain.MergeEvent
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &event)
			})
			if err != nil {
				return fmt.Errorf("unmarshal merge event %s: %w", string(it.Item().Key()), err)
			}
			events = append(events, event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
