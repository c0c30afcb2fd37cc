// Package search maintains a Bleve full-text index over the album catalog.
// Albums are indexed as flat documents so admin tooling can find a release
// by artist or title, filter to manual records, and pull every album that
// shares an identity key without scanning the store.
package search

import (
	"strconv"

	"github.com/magnusoverli/sushe-online-sub003/internal/albumkey"
	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

// AlbumDocument is the shape an album takes in the index. Everything a
// query might want is denormalized at write time; the index never reads
// the store.
type AlbumDocument struct {
	ID     string `json:"id"`
	Artist string `json:"artist"`
	Album  string `json:"album"`

	// NormalizedKey groups documents that describe the same release, so
	// "every album colliding with this one" is a single term query.
	NormalizedKey string `json:"normalized_key"`

	Country string   `json:"country,omitempty"`
	Genres  []string `json:"genres,omitempty"`

	// Manual flags hand-entered records; reconciliation tooling filters
	// on it constantly.
	Manual   bool `json:"manual"`
	HasCover bool `json:"has_cover"`

	ReleaseYear int `json:"release_year,omitempty"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve indexes Go struct field names by default, but the index mapping
// uses lowercase names, so the conversion is explicit. Booleans are always
// present: a filter for manual=false has to match documents, not absence.
func (d *AlbumDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":             d.ID,
		"artist":         d.Artist,
		"album":          d.Album,
		"normalized_key": d.NormalizedKey,
		"manual":         d.Manual,
		"has_cover":      d.HasCover,
		"created_at":     d.CreatedAt,
		"updated_at":     d.UpdatedAt,
	}

	if d.Country != "" {
		m["country"] = d.Country
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.ReleaseYear > 0 {
		m["release_year"] = d.ReleaseYear
	}

	return m
}

// AlbumToDocument converts a canonical album record to its index document.
// The identity key is computed here so the index and the dedup pass can
// never disagree about which documents collide.
func AlbumToDocument(album *domain.Album) *AlbumDocument {
	doc := &AlbumDocument{
		ID:            album.ID,
		Artist:        album.Artist,
		Album:         album.Album,
		NormalizedKey: albumkey.NormalizeKey(album.Artist, album.Album),
		Country:       album.Country,
		Manual:        album.IsManual(),
		HasCover:      album.HasCover(),
		CreatedAt:     album.CreatedAt.UnixMilli(),
		UpdatedAt:     album.UpdatedAt.UnixMilli(),
	}

	if album.Genre1 != "" {
		doc.Genres = append(doc.Genres, album.Genre1)
	}
	if album.Genre2 != "" {
		doc.Genres = append(doc.Genres, album.Genre2)
	}

	// Release dates arrive as YYYY-MM-DD, YYYY-MM or bare YYYY.
	if len(album.ReleaseDate) >= 4 {
		if year, err := strconv.Atoi(album.ReleaseDate[:4]); err == nil {
			doc.ReleaseYear = year
		}
	}

	return doc
}
