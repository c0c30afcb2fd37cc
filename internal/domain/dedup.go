package domain

// DuplicateEntry locates one list row caught up in a duplicated identity.
type DuplicateEntry struct {
	AlbumID  string `json:"album_id"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	ListID   string `json:"list_id"`
	ListName string `json:"list_name"`
	Position int    `json:"position"`
}

// DuplicateGroup collects every row whose artist/album pair normalizes to
// the same identity key while more than one distinct album ID is in play.
// Artist and Album hold the display form from the most recently written row.
type DuplicateGroup struct {
	NormalizedKey string           `json:"normalized_key"`
	Artist        string           `json:"artist"`
	Album         string           `json:"album"`
	AlbumIDs      []string         `json:"album_ids"` // distinct, most recently written first
	Entries       []DuplicateEntry `json:"entries"`
}
