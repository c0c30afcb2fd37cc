package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/magnusoverli/sushe-online-sub003/internal/cache"
	"github.com/magnusoverli/sushe-online-sub003/internal/covers"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
)

// Albums live under album:<albumID>. There is no secondary index on albums;
// the row reference index (see rows.go) answers "who points here".
const albumPrefix = "album:"

// ErrAlbumNotFound is returned when an album lookup misses.
var ErrAlbumNotFound = errors.New("album not found")

// countryAliases maps common shorthand to the display names list imports
// have historically used. Lookup is case-insensitive; unknown values pass
// through untouched.
var countryAliases = map[string]string{
	"us":                       "United States",
	"usa":                      "United States",
	"u.s.":                     "United States",
	"u.s.a.":                   "United States",
	"united states of america": "United States",
	"uk":                       "United Kingdom",
	"u.k.":                     "United Kingdom",
	"great britain":            "United Kingdom",
	"england":                  "United Kingdom",
	"korea, republic of":       "South Korea",
	"republic of korea":        "South Korea",
}

// normalizeCountry collapses whitespace and resolves well-known aliases.
func normalizeCountry(country string) string {
	collapsed := strings.Join(strings.Fields(country), " ")
	if collapsed == "" {
		return ""
	}
	if canonical, ok := countryAliases[strings.ToLower(collapsed)]; ok {
		return canonical
	}
	return collapsed
}

// albumMetadataChanged reports whether a field that feeds row resolution
// differs between two versions of an album.
func albumMetadataChanged(old, updated *domain.Album) bool {
	return old.Artist != updated.Artist ||
		old.Album != updated.Album ||
		old.ReleaseDate != updated.ReleaseDate ||
		old.Country != updated.Country ||
		old.Genre1 != updated.Genre1 ||
		old.Genre2 != updated.Genre2 ||
		!domain.TracksEqual(old.Tracks, updated.Tracks) ||
		!bytes.Equal(old.CoverImage, updated.CoverImage) ||
		old.CoverFormat != updated.CoverFormat
}

// UpsertAlbum creates or replaces a canonical album. Cover format and
// blurhash are derived from the cover bytes when present; sniff failures
// keep the caller-provided format and blurhash failures leave the hash
// empty, neither is fatal. On update, a material metadata change
// invalidates the cached responses of every user whose rows reference the
// album, since their resolved views just changed underneath them.
func (s *Store) UpsertAlbum(ctx context.Context, album *domain.Album) error {
	if album == nil || album.ID == "" {
		return domainerrors.Validation("album id is required")
	}

	album.Country = normalizeCountry(album.Country)

	if album.HasCover() {
		if format, err := covers.Sniff(album.CoverImage); err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("could not sniff cover format, keeping provided value",
					"album_id", album.ID,
					"format", album.CoverFormat)
			}
		} else {
			album.CoverFormat = format
		}

		if hash, err := covers.Blurhash(album.CoverImage); err != nil {
			album.CoverBlurhash = ""
			if s.logger != nil {
				s.logger.WithError(err).Warn("could not compute cover blurhash", "album_id", album.ID)
			}
		} else {
			album.CoverBlurhash = hash
		}
	} else {
		album.CoverFormat = ""
		album.CoverBlurhash = ""
	}

	now := time.Now().UTC()
	var existed, materialChange bool

	key := buildKey(albumPrefix, album.ID)
	defer releaseKey(key)

	err := s.db.Update(func(txn *badger.Txn) error {
		var old domain.Album
		err := getInto(txn, key, &old)
		switch {
		case err == nil:
			existed = true
			album.CreatedAt = old.CreatedAt
			materialChange = albumMetadataChanged(&old, album)
		case errors.Is(err, badger.ErrKeyNotFound):
			if album.CreatedAt.IsZero() {
				album.CreatedAt = now
			}
		default:
			return err
		}

		album.UpdatedAt = now

		data, err := json.Marshal(album)
		if err != nil {
			return fmt.Errorf("marshal album: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return fmt.Errorf("upsert album %s: %w", album.ID, err)
	}

	s.indexAlbumAsync(album)

	if existed && materialChange {
		users, err := s.UsersReferencingAlbum(ctx, album.ID)
		if err != nil {
			if s.logger != nil {
				s.logger.WithError(err).Warn("could not resolve referencing users for invalidation",
					"album_id", album.ID)
			}
			return nil
		}
		s.emitUserInvalidations(cache.ReasonAlbumUpdate, users)
	}

	return nil
}

// GetAlbum retrieves an album by ID.
func (s *Store) GetAlbum(_ context.Context, albumID string) (*domain.Album, error) {
	var album domain.Album

	key := buildKey(albumPrefix, albumID)
	defer releaseKey(key)

	err := s.get(key, &album)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrAlbumNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get album %s: %w", albumID, err)
	}
	return &album, nil
}

// AlbumByID implements the field compressor's album source. A missing album
// is a memoizable miss for the compressor, not an error.
func (s *Store) AlbumByID(ctx context.Context, albumID string) (*domain.Album, error) {
	album, err := s.GetAlbum(ctx, albumID)
	if errors.Is(err, ErrAlbumNotFound) {
		return nil, nil
	}
	return album, err
}

// GetAlbumsByIDs retrieves multiple albums in one read transaction.
// Missing and empty IDs are skipped, not errors.
func (s *Store) GetAlbumsByIDs(_ context.Context, albumIDs []string) (map[string]*domain.Album, error) {
	albums := make(map[string]*domain.Album, len(albumIDs))

	err := s.db.View(func(txn *badger.Txn) error {
		for _, albumID := range albumIDs {
			if albumID == "" {
				continue
			}

			var album domain.Album
			err := getInto(txn, []byte(albumPrefix+albumID), &album)
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get album %s: %w", albumID, err)
			}
			albums[albumID] = &album
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return albums, nil
}

// ListManualAlbums returns every album carrying a manually minted ID,
// sorted by artist then title.
func (s *Store) ListManualAlbums(_ context.Context) ([]*domain.Album, error) {
	return s.listAlbums(func(a *domain.Album) bool { return a.IsManual() })
}

// ListExternalAlbums returns every album whose ID did not come from manual
// entry, sorted by artist then title.
func (s *Store) ListExternalAlbums(_ context.Context) ([]*domain.Album, error) {
	return s.listAlbums(func(a *domain.Album) bool { return !a.IsManual() })
}

func (s *Store) listAlbums(keep func(*domain.Album) bool) ([]*domain.Album, error) {
	var albums []*domain.Album
	prefix := []byte(albumPrefix)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var album domain.Album
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &album)
			})
			if err != nil {
				return fmt.Errorf("unmarshal album %s: %w", string(it.Item().Key()), err)
			}
			if keep(&album) {
				albums = append(albums, &album)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(albums, func(i, j int) bool {
		if albums[i].Artist != albums[j].Artist {
			return albums[i].Artist < albums[j].Artist
		}
		return albums[i].Album < albums[j].Album
	})
	return albums, nil
}
