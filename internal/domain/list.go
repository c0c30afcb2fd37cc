package domain

import "time"

// List is one user's album list for a given year.
type List struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User identifies a list owner. Authentication lives outside this module;
// only what attribution and reporting need is kept here.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ListRow is one entry in a list. The metadata fields are overrides: an
// inherited field takes its value from the album referenced by AlbumID.
// Comments and TrackPick are row-local opinions and never inherit.
type ListRow struct {
	ListID      string         `json:"list_id"`
	Position    int            `json:"position"` // 1-based, unique within the list
	AlbumID     string         `json:"album_id,omitempty"`
	Artist      Field[string]  `json:"artist"`
	AlbumTitle  Field[string]  `json:"album"`
	ReleaseDate Field[string]  `json:"release_date"`
	Country     Field[string]  `json:"country"`
	Genre1      Field[string]  `json:"genre_1"`
	Genre2      Field[string]  `json:"genre_2"`
	Tracks      Field[[]Track] `json:"tracks"`
	CoverImage  Field[[]byte]  `json:"cover_image"`
	CoverFormat Field[string]  `json:"cover_format"`
	Comments    string         `json:"comments,omitempty"`
	TrackPick   string         `json:"track_pick,omitempty"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// HasAlbum returns true if the row references a canonical album.
// Rows without a reference must carry every field they want to keep.
func (r *ListRow) HasAlbum() bool {
	return r.AlbumID != ""
}

// ResolvedRow is a ListRow with every inherited field substituted by the
// canonical album's value. Read paths hand these to callers so nobody
// downstream has to know about inheritance.
type ResolvedRow struct {
	ListID      string    `json:"list_id"`
	Position    int       `json:"position"`
	AlbumID     string    `json:"album_id,omitempty"`
	Artist      string    `json:"artist"`
	Album       string    `json:"album"`
	ReleaseDate string    `json:"release_date,omitempty"`
	Country     string    `json:"country,omitempty"`
	Genre1      string    `json:"genre_1,omitempty"`
	Genre2      string    `json:"genre_2,omitempty"`
	Tracks      []Track   `json:"tracks,omitempty"`
	CoverImage  []byte    `json:"cover_image,omitempty"`
	CoverFormat string    `json:"cover_format,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	TrackPick   string    `json:"track_pick,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
