// Package migrate performs the one-shot import of a legacy SuShe library
// export into the store. The export is a SQLite database with users, albums,
// lists and list_items tables; the importer reads it once, read-only, and
// writes through the store so compression, cover sniffing and indexing all
// apply to imported data exactly as they would to live writes.
package migrate

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/magnusoverli/sushe-online-sub003/internal/albumkey"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	"github.com/magnusoverli/sushe-online-sub003/internal/id"
	"github.com/magnusoverli/sushe-online-sub003/internal/logger"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
)

// Importer copies a legacy library export into the store.
type Importer struct {
	store  *store.Store
	logger *logger.Logger
}

// NewImporter creates an importer writing to the given store.
func NewImporter(st *store.Store, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Discard()
	}
	return &Importer{
		store:  st,
		logger: log,
	}
}

// Result reports what one import run did. Warnings carry per-record
// failures the run skipped over; the run itself only fails on problems
// with the export file.
type Result struct {
	UsersImported  int           `json:"users_imported"`
	AlbumsImported int           `json:"albums_imported"`
	AlbumsDeduped  int           `json:"albums_deduped"`
	AlbumsSkipped  int           `json:"albums_skipped"`
	ListsImported  int           `json:"lists_imported"`
	ListsSkipped   int           `json:"lists_skipped"`
	RowsImported   int           `json:"rows_imported"`
	RowsDetached   int           `json:"rows_detached"`
	RowsSkipped    int           `json:"rows_skipped"`
	Warnings       []string      `json:"warnings,omitempty"`
	Duration       time.Duration `json:"duration"`
}

// Run imports the export at path. Album records collapsing to the same
// basic identity key are deduplicated to the first occurrence; records
// without an identifier get a minted internal ID. Per-record failures are
// logged, recorded as warnings and skipped.
func (im *Importer) Run(ctx context.Context, path string) (*Result, error) {
	start := time.Now()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open legacy database: %w", err)
	}
	defer db.Close()

	// The export is read exactly once and never written.
	pragmas := []string{
		"PRAGMA query_only=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	im.logger.Info("legacy import starting", "path", path)

	result := &Result{}

	users, err := im.importUsers(ctx, db, result)
	if err != nil {
		return result, fmt.Errorf("import users: %w", err)
	}

	remap, err := im.importAlbums(ctx, db, result)
	if err != nil {
		return result, fmt.Errorf("import albums: %w", err)
	}

	if err := im.importLists(ctx, db, users, remap, result); err != nil {
		return result, fmt.Errorf("import lists: %w", err)
	}

	result.Duration = time.Since(start)

	im.logger.Info("legacy import completed",
		"users", result.UsersImported,
		"albums", result.AlbumsImported,
		"albums_deduped", result.AlbumsDeduped,
		"lists", result.ListsImported,
		"rows", result.RowsImported,
		"warnings", len(result.Warnings),
		"duration", result.Duration)

	return result, nil
}

// importUsers copies the users table and returns the set of imported IDs
// so list ownership can be checked.
func (im *Importer) importUsers(ctx context.Context, db *sql.DB, result *Result) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, username FROM users ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make(map[string]bool)

	for rows.Next() {
		var userID string
		var username sql.NullString
		if err := rows.Scan(&userID, &username); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}

		if userID == "" {
			result.Warnings = append(result.Warnings, "skipped user record without an id")
			continue
		}

		err := im.store.PutUser(ctx, &domain.User{
			ID:       userID,
			Username: username.String,
		})
		if err != nil {
			im.logger.WithError(err).Warn("failed to import user", "user_id", userID)
			result.Warnings = append(result.Warnings, fmt.Sprintf("user %s: %v", userID, err))
			continue
		}

		users[userID] = true
		result.UsersImported++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// legacyTrack is the track shape the original application stored as JSON
// in the albums table.
type legacyTrack struct {
	Name       string `json:"name"`
	DurationMS *int64 `json:"duration_ms"`
}

// importAlbums copies the albums table, deduplicating on the basic identity
// key. The returned remap translates every legacy album ID to the ID its
// records ended up under. First occurrence wins: later records collapsing
// to an already-imported key contribute nothing but their remap entry.
func (im *Importer) importAlbums(ctx context.Context, db *sql.DB, result *Result) (map[string]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, artist, album, release_date, country, genre_1, genre_2,
		       tracks, cover, cover_format
		FROM albums ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	remap := make(map[string]string)
	byKey := make(map[string]string)

	for rows.Next() {
		var legacyID, artist, album sql.NullString
		var releaseDate, country, genre1, genre2, tracksJSON, coverFormat sql.NullString
		var cover []byte

		err := rows.Scan(&legacyID, &artist, &album, &releaseDate, &country,
			&genre1, &genre2, &tracksJSON, &cover, &coverFormat)
		if err != nil {
			return nil, fmt.Errorf("scan album: %w", err)
		}

		if artist.String == "" && album.String == "" {
			result.AlbumsSkipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("skipped album %q with neither artist nor title", legacyID.String))
			continue
		}

		// Basic key only: historical records differing by edition suffix
		// or a leading article stay distinct on import, the duplicate
		// finder surfaces them later for a human to judge.
		key := albumkey.BasicNormalizeKey(artist.String, album.String)

		if canonicalID, ok := byKey[key]; ok {
			if legacyID.String != "" {
				remap[legacyID.String] = canonicalID
			}
			result.AlbumsDeduped++
			continue
		}

		albumID := legacyID.String
		if albumID == "" {
			albumID, err = id.Generate(id.PrefixInternal)
			if err != nil {
				return nil, fmt.Errorf("mint internal id: %w", err)
			}
		}

		record := &domain.Album{
			ID:          albumID,
			Artist:      artist.String,
			Album:       album.String,
			ReleaseDate: releaseDate.String,
			Country:     country.String,
			Genre1:      genre1.String,
			Genre2:      genre2.String,
			CoverImage:  cover,
			CoverFormat: coverFormat.String,
		}

		if tracksJSON.String != "" {
			var legacyTracks []legacyTrack
			if err := json.Unmarshal([]byte(tracksJSON.String), &legacyTracks); err != nil {
				im.logger.WithError(err).Warn("could not parse legacy tracks", "album_id", albumID)
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("album %s: unparseable tracks, imported without them", albumID))
			} else {
				for _, lt := range legacyTracks {
					record.Tracks = append(record.Tracks, domain.Track{
						Name:         lt.Name,
						LengthMillis: lt.DurationMS,
					})
				}
			}
		}

		if err := im.store.UpsertAlbum(ctx, record); err != nil {
			im.logger.WithError(err).Warn("failed to import album", "album_id", albumID)
			result.Warnings = append(result.Warnings, fmt.Sprintf("album %s: %v", albumID, err))
			result.AlbumsSkipped++
			continue
		}

		byKey[key] = albumID
		if legacyID.String != "" {
			remap[legacyID.String] = albumID
		}
		result.AlbumsImported++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate albums: %w", err)
	}

	return remap, nil
}

// importLists copies lists owned by imported users, then their rows.
func (im *Importer) importLists(ctx context.Context, db *sql.DB, users map[string]bool, remap map[string]string, result *Result) error {
	rows, err := db.QueryContext(ctx, `
		SELECT id, user_id, name, year, created_at
		FROM lists ORDER BY rowid`)
	if err != nil {
		return fmt.Errorf("query lists: %w", err)
	}
	defer rows.Close()

	var imported []string

	for rows.Next() {
		var listID, userID string
		var name, createdAt sql.NullString
		var year int

		if err := rows.Scan(&listID, &userID, &name, &year, &createdAt); err != nil {
			return fmt.Errorf("scan list: %w", err)
		}

		if !users[userID] {
			result.ListsSkipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("list %s: owner %q was not imported", listID, userID))
			continue
		}

		list := &domain.List{
			ID:        listID,
			UserID:    userID,
			Name:      name.String,
			Year:      year,
			CreatedAt: parseLegacyTime(createdAt),
		}

		if err := im.store.PutList(ctx, list); err != nil {
			im.logger.WithError(err).Warn("failed to import list", "list_id", listID)
			result.Warnings = append(result.Warnings, fmt.Sprintf("list %s: %v", listID, err))
			result.ListsSkipped++
			continue
		}

		result.ListsImported++
		imported = append(imported, listID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate lists: %w", err)
	}

	for _, listID := range imported {
		if err := im.importListRows(ctx, db, listID, remap, result); err != nil {
			return fmt.Errorf("import rows for list %s: %w", listID, err)
		}
	}

	return nil
}

// importListRows copies one list's items. Every metadata column comes in as
// a row override; the store's write-path compression drops whatever matches
// the referenced album, so only genuine divergence survives.
func (im *Importer) importListRows(ctx context.Context, db *sql.DB, listID string, remap map[string]string, result *Result) error {
	rows, err := db.QueryContext(ctx, `
		SELECT position, album_id, artist, album, release_date, country,
		       genre_1, genre_2, comments, track_pick, cover, cover_format,
		       updated_at
		FROM list_items WHERE list_id = ? ORDER BY position`, listID)
	if err != nil {
		return fmt.Errorf("query list items: %w", err)
	}
	defer rows.Close()

	var listRows []domain.ListRow
	positions := make(map[int]bool)

	for rows.Next() {
		var position int
		var albumID, artist, album, releaseDate, country sql.NullString
		var genre1, genre2, comments, trackPick, coverFormat, updatedAt sql.NullString
		var cover []byte

		err := rows.Scan(&position, &albumID, &artist, &album, &releaseDate,
			&country, &genre1, &genre2, &comments, &trackPick, &cover,
			&coverFormat, &updatedAt)
		if err != nil {
			return fmt.Errorf("scan list item: %w", err)
		}

		if position < 1 || positions[position] {
			result.RowsSkipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("list %s: unusable position %d", listID, position))
			continue
		}
		positions[position] = true

		if albumID.String == "" && artist.String == "" && album.String == "" {
			result.RowsSkipped++
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("list %s position %d: empty row", listID, position))
			continue
		}

		row := domain.ListRow{
			ListID:    listID,
			Position:  position,
			Comments:  comments.String,
			TrackPick: trackPick.String,
			UpdatedAt: parseLegacyTime(updatedAt),
		}

		if albumID.String != "" {
			canonicalID, ok := remap[albumID.String]
			if !ok {
				// Reference into nothing. The item keeps its own text as
				// overrides, so detaching loses no metadata.
				im.logger.Warn("detached row from unknown legacy album",
					"list_id", listID,
					"position", position,
					"legacy_album_id", albumID.String)
				result.RowsDetached++
			} else {
				row.AlbumID = canonicalID
			}
		}

		if artist.String != "" {
			row.Artist = domain.Override(artist.String)
		}
		if album.String != "" {
			row.AlbumTitle = domain.Override(album.String)
		}
		if releaseDate.String != "" {
			row.ReleaseDate = domain.Override(releaseDate.String)
		}
		if country.String != "" {
			row.Country = domain.Override(country.String)
		}
		if genre1.String != "" {
			row.Genre1 = domain.Override(genre1.String)
		}
		if genre2.String != "" {
			row.Genre2 = domain.Override(genre2.String)
		}
		if len(cover) > 0 {
			row.CoverImage = domain.Override(cover)
			row.CoverFormat = domain.Override(coverFormat.String)
		}

		listRows = append(listRows, row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate list items: %w", err)
	}

	if len(listRows) == 0 {
		return nil
	}

	if err := im.store.PutListRows(ctx, listID, listRows); err != nil {
		im.logger.WithError(err).Warn("failed to import list rows", "list_id", listID)
		result.Warnings = append(result.Warnings, fmt.Sprintf("list %s rows: %v", listID, err))
		result.RowsSkipped += len(listRows)
		return nil
	}

	result.RowsImported += len(listRows)
	return nil
}

// parseLegacyTime accepts the timestamp shapes the original application
// wrote over the years. Unparseable values come back zero and the store
// stamps the write time instead.
func parseLegacyTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s.String); err == nil {
			return t
		}
	}
	return time.Time{}
}
