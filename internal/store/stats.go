package store

import (
	"context"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

// Stats counts the primary records of each entity family. Index keys are
// skipped; the numbers describe records, not key-space size.
type Stats struct {
	Albums         int `json:"albums"`
	ManualAlbums   int `json:"manual_albums"`
	InternalAlbums int `json:"internal_albums"`
	Lists          int `json:"lists"`
	Rows           int `json:"rows"`
	Users          int `json:"users"`
	Exclusions     int `json:"exclusions"`
	MergeEvents    int `json:"merge_events"`
}

// GetStats counts every record family in one read snapshot. Keys only, no
// value fetches: the album ID prefix in the key is enough to classify it.
func (s *Store) GetStats(_ context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		count := func(prefix, skipPrefix string, record func(key string)) {
			p := []byte(prefix)
			for it.Seek(p); it.ValidForPrefix(p); it.Next() {
				key := string(it.Item().Key())
				if skipPrefix != "" && strings.HasPrefix(key, skipPrefix) {
					continue
				}
				record(key)
			}
		}

		count(albumPrefix, "", func(key string) {
			stats.Albums++
			albumID := strings.TrimPrefix(key, albumPrefix)
			switch {
			case strings.HasPrefix(albumID, domain.ManualIDPrefix):
				stats.ManualAlbums++
			case strings.HasPrefix(albumID, domain.InternalIDPrefix):
				stats.InternalAlbums++
			}
		})
		count(listPrefix, listYearIndexPrefix, func(string) { stats.Lists++ })
		count(rowPrefix, rowAlbumIndexPrefix, func(string) { stats.Rows++ })
		count(userPrefix, "", func(string) { stats.Users++ })
		count(exclusionPrefix, "", func(string) { stats.Exclusions++ })
		count(mergeEventPrefix, "", func(string) { stats.MergeEvents++ })

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stats, nil
}
