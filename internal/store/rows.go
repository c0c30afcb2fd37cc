package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/cache"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
	"github.com/magnusoverli/sushe-online-sub003/internal/inherit"
)

// Rows live under row:<listID>:<position>, with the position zero-padded so
// prefix iteration returns list order. The reference index at
// row:idx:album:<albumID>:<listID>:<position> has empty values; the key
// alone answers "which rows point at this album".
const (
	rowPrefix           = "row:"
	rowAlbumIndexPrefix = "row:idx:album:"
)

// maxListPosition bounds positions to the key padding width.
const maxListPosition = 99999

// rowKey builds the primary key for one row.
func rowKey(listID string, position int) []byte {
	return []byte(fmt.Sprintf("%s%s:%05d", rowPrefix, listID, position))
}

// rowAlbumIndexKey builds the reference index key for one row.
func rowAlbumIndexKey(albumID, listID string, position int) []byte {
	return []byte(fmt.Sprintf("%s%s:%s:%05d", rowAlbumIndexPrefix, albumID, listID, position))
}

// parseRowAlbumIndexKey recovers (listID, position) from a reference index
// key scoped to albumID.
func parseRowAlbumIndexKey(key []byte, albumID string) (string, int, error) {
	rest := strings.TrimPrefix(string(key), rowAlbumIndexPrefix+albumID+":")
	listID, posDigits, ok := strings.Cut(rest, ":")
	if !ok {
		return "", 0, fmt.Errorf("malformed row index key %q", string(key))
	}
	position, err := strconv.Atoi(posDigits)
	if err != nil {
		return "", 0, fmt.Errorf("malformed row index key %q: %w", string(key), err)
	}
	return listID, position, nil
}

// PutListRows replaces the full contents of a list in one transaction. Rows
// pass through the field compressor first, so values identical to the
// referenced album collapse to inherited before anything is written.
// Positions must be 1-based and unique. The list owner's cached responses
// are invalidated after commit.
func (s *Store) PutListRows(ctx context.Context, listID string, rows []domain.ListRow) error {
	if listID == "" {
		return domainerrors.Validation("list id is required")
	}

	list, err := s.GetList(ctx, listID)
	if err != nil {
		return err
	}

	seen := make(map[int]bool, len(rows))
	for i := range rows {
		pos := rows[i].Position
		if pos < 1 || pos > maxListPosition {
			return domainerrors.Validationf("row position %d out of range", pos)
		}
		if seen[pos] {
			return domainerrors.Validationf("duplicate row position %d", pos)
		}
		seen[pos] = true
	}

	compressed, err := inherit.CompressRows(ctx, rows, inherit.NewLookup(s))
	if err != nil {
		return fmt.Errorf("compress rows: %w", err)
	}

	now := time.Now().UTC()
	for i := range compressed {
		compressed[i].ListID = listID
		if compressed[i].UpdatedAt.IsZero() {
			compressed[i].UpdatedAt = now
		}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := deleteListRows(txn, listID); err != nil {
			return err
		}

		for i := range compressed {
			row := &compressed[i]

			data, err := json.Marshal(row)
			if err != nil {
				return fmt.Errorf("marshal row %d: %w", row.Position, err)
			}
			if err := txn.Set(rowKey(listID, row.Position), data); err != nil {
				return err
			}
			if row.HasAlbum() {
				if err := txn.Set(rowAlbumIndexKey(row.AlbumID, listID, row.Position), nil); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("put rows for list %s: %w", listID, err)
	}

	s.emitUserInvalidations(cache.ReasonListWrite, []string{list.UserID})
	return nil
}

// deleteListRows removes a list's rows and their reference index keys
// inside txn.
func deleteListRows(txn *badger.Txn, listID string) error {
	prefix := []byte(rowPrefix + listID + ":")

	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix

	var primaryKeys, indexKeys [][]byte

	it := txn.NewIterator(opts)
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()

		var row domain.ListRow
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &row) }); err != nil {
			it.Close()
			return fmt.Errorf("unmarshal row %s: %w", string(item.Key()), err)
		}

		primaryKeys = append(primaryKeys, item.KeyCopy(nil))
		if row.HasAlbum() {
			indexKeys = append(indexKeys, rowAlbumIndexKey(row.AlbumID, listID, row.Position))
		}
	}
	it.Close()

	for _, key := range primaryKeys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	for _, key := range indexKeys {
		if err := txn.Delete(key); err != nil {
			return err
		}
	}
	return nil
}

// ListRows returns a list's rows in position order, still compressed.
func (s *Store) ListRows(_ context.Context, listID string) ([]domain.ListRow, error) {
	var rows []domain.ListRow
	prefix := []byte(rowPrefix + listID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
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
				return fmt.Errorf("unmarshal row %s: %w", string(it.Item().Key()), err)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rows for list %s: %w", listID, err)
	}
	return rows, nil
}

// ResolvedListRows returns a list's rows with every inherited field
// substituted from its canonical album.
func (s *Store) ResolvedListRows(ctx context.Context, listID string) ([]domain.ResolvedRow, error) {
	rows, err := s.ListRows(ctx, listID)
	if err != nil {
		return nil, err
	}

	resolved, err := inherit.ResolveRows(ctx, rows, inherit.NewLookup(s))
	if err != nil {
		return nil, fmt.Errorf("resolve rows for list %s: %w", listID, err)
	}
	return resolved, nil
}

// RowsReferencingAlbum returns every row pointing at the album, across all
// lists.
func (s *Store) RowsReferencingAlbum(_ context.Context, albumID string) ([]domain.ListRow, error) {
	if albumID == "" {
		return nil, domainerrors.Validation("album id is required")
	}

	var rows []domain.ListRow
	prefix := []byte(rowAlbumIndexPrefix + albumID + ":")

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			listID, position, err := parseRowAlbumIndexKey(it.Item().Key(), albumID)
			if err != nil {
				if s.logger != nil {
					s.logger.WithError(err).Warn("skipping malformed row index key")
				}
				continue
			}

			var row domain.ListRow
			err = getInto(txn, rowKey(listID, position), &row)
			if errors.Is(err, badger.ErrKeyNotFound) {
				// Dangling index entry, skip it.
				continue
			}
			if err != nil {
				return fmt.Errorf("get row %s:%d: %w", listID, position, err)
			}
			rows = append(rows, row)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rows referencing album %s: %w", albumID, err)
	}
	return rows, nil
}

// UsersReferencingAlbum returns the IDs of users owning at least one row
// that points at the album, sorted for determinism.
func (s *Store) UsersReferencingAlbum(ctx context.Context, albumID string) ([]string, error) {
	rows, err := s.RowsReferencingAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}

	listIDs := make(map[string]bool, len(rows))
	for i := range rows {
		listIDs[rows[i].ListID] = true
	}

	users := make(map[string]bool, len(listIDs))
	for listID := range listIDs {
		list, err := s.GetList(ctx, listID)
		if errors.Is(err, ErrListNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		users[list.UserID] = true
	}

	return sortedKeys(users), nil
}
