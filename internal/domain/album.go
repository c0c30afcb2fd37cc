// Package domain contains the core business entities for the SuShe album catalog.
package domain

import (
	"strings"
	"time"
)

// Album ID namespaces. An album ID is otherwise opaque; these prefixes are
// the only shapes this module mints itself.
const (
	// ManualIDPrefix marks albums created by hand in the add-album dialog.
	ManualIDPrefix = "manual-"
	// InternalIDPrefix marks albums minted during legacy library imports.
	InternalIDPrefix = "internal-"
)

// Album is a canonical album record. Every list row that references its ID
// inherits whatever metadata the row does not override.
type Album struct {
	ID            string    `json:"id"`
	Artist        string    `json:"artist"`
	Album         string    `json:"album"`
	ReleaseDate   string    `json:"release_date,omitempty"`
	Country       string    `json:"country,omitempty"` // ISO 3166-1 alpha-2 where known
	Genre1        string    `json:"genre_1,omitempty"`
	Genre2        string    `json:"genre_2,omitempty"`
	Tracks        []Track   `json:"tracks,omitempty"`
	CoverImage    []byte    `json:"cover_image,omitempty"`
	CoverFormat   string    `json:"cover_format,omitempty"`
	CoverBlurhash string    `json:"cover_blurhash,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// IsManual returns true if this album was created by hand rather than
// matched to an external catalog.
func (a *Album) IsManual() bool {
	return strings.HasPrefix(a.ID, ManualIDPrefix)
}

// IsInternal returns true if this album's ID was minted during an import.
func (a *Album) IsInternal() bool {
	return strings.HasPrefix(a.ID, InternalIDPrefix)
}

// HasCover returns true if cover image bytes are present.
func (a *Album) HasCover() bool {
	return len(a.CoverImage) > 0
}

// HasIdentity returns true if at least one of artist or album title is set.
// Albums failing this are unusable and get flagged by the integrity scan.
func (a *Album) HasIdentity() bool {
	return strings.TrimSpace(a.Artist) != "" || strings.TrimSpace(a.Album) != ""
}

// Track is a single track on an album.
type Track struct {
	Name         string `json:"name"`
	LengthMillis *int64 `json:"length_millis,omitempty"` // absent when the source had no duration
}

// Equal reports whether two tracks match by name and duration.
// An absent duration only matches another absent duration.
func (t Track) Equal(o Track) bool {
	if t.Name != o.Name {
		return false
	}
	if (t.LengthMillis == nil) != (o.LengthMillis == nil) {
		return false
	}
	if t.LengthMillis != nil && *t.LengthMillis != *o.LengthMillis {
		return false
	}
	return true
}

// TracksEqual reports whether two track lists match structurally:
// same names, same durations, same order. Nil and empty are equivalent.
func TracksEqual(a, b []Track) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}
