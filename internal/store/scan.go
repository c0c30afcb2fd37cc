package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	"github.com/magnusoverli/sushe-online-sub003/internal/inherit"
)

// ScannedRow is one album occurrence in a year scan, denormalized so the
// duplicate finder and audit paths never re-read the store.
type ScannedRow struct {
	AlbumID      string    `json:"album_id,omitempty"`
	Artist       string    `json:"artist"`
	Album        string    `json:"album"`
	UserID       string    `json:"user_id"`
	Username     string    `json:"username"`
	ListID       string    `json:"list_id"`
	ListName     string    `json:"list_name"`
	Position     int       `json:"position"`
	RowUpdatedAt time.Time `json:"row_updated_at"`
}

// ScanYear loads every row of every list for a year inside one read
// snapshot. Artist and album come back resolved against their canonical
// albums; concurrent writes land after the snapshot and are the merge
// transaction's problem, which re-verifies anyway.
func (s *Store) ScanYear(ctx context.Context, year int) ([]ScannedRow, error) {
	var scanned []ScannedRow

	err := s.db.View(func(txn *badger.Txn) error {
		// Resolve albums through a batch lookup bound to this snapshot, so
		// each album is read at most once per scan.
		lookup := inherit.NewLookup(inherit.SourceFunc(func(_ context.Context, albumID string) (*domain.Album, error) {
			var album domain.Album
			err := getInto(txn, []byte(albumPrefix+albumID), &album)
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil, nil
			}
			if err != nil {
				return nil, err
			}
			return &album, nil
		}))

		yearPrefix := []byte(fmt.Sprintf("%s%d:", listYearIndexPrefix, year))
		var listIDs []string

		opts := badger.DefaultIteratorOptions
		opts.Prefix = yearPrefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		for it.Seek(yearPrefix); it.ValidForPrefix(yearPrefix); it.Next() {
			listIDs = append(listIDs, strings.TrimPrefix(string(it.Item().Key()), string(yearPrefix)))
		}
		it.Close()

		for _, listID := range listIDs {
			var list domain.List
			err := getInto(txn, []byte(listPrefix+listID), &list)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling index entry, skip it.
				continue
			}
			if err != nil {
				return fmt.Errorf("get list %s: %w", listID, err)
			}

			username := ""
			var user domain.User
			err = getInto(txn, []byte(userPrefix+list.UserID), &user)
			switch {
			case err == nil:
				username = user.Username
			case errors.Is(err, badger.ErrKeyNotFound):
				// Owner record missing; keep the ID, report an empty name.
			default:
				return fmt.Errorf("get user %s: %w", list.UserID, err)
			}

			rows, err := scanListRows(ctx, txn, lookup, &list, username)
			if err != nil {
				return err
			}
			scanned = append(scanned, rows...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan year %d: %w", year, err)
	}
	return scanned, nil
}

// scanListRows walks one list's rows within txn and resolves each against
// its canonical album.
func scanListRows(ctx context.Context, txn *badger.Txn, lookup *inherit.Lookup, list *domain.List, username string) ([]ScannedRow, error) {
	var scanned []ScannedRow
	prefix := []byte(rowPrefix + list.ID + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		var row domain.ListRow
		err := it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &row)
		})
		if err != nil {
			return nil, fmt.Errorf("unmarshal row %s: %w", string(it.Item().Key()), err)
		}

		resolved, err := inherit.ResolveRow(ctx, row, lookup)
		if err != nil {
			return nil, fmt.Errorf("resolve row %s:%d: %w", list.ID, row.Position, err)
		}

		scanned = append(scanned, ScannedRow{
			AlbumID:      row.AlbumID,
			Artist:       resolved.Artist,
			Album:        resolved.Album,
			UserID:       list.UserID,
			Username:     username,
			ListID:       list.ID,
			ListName:     list.Name,
			Position:     row.Position,
			RowUpdatedAt: row.UpdatedAt,
		})
	}
	return scanned, nil
}
