package domain

import "time"

// EventTypeAlbumMerge is the event type recorded for every album merge.
const EventTypeAlbumMerge = "album_merge"

// MergeEvent is the append-only audit record of one album merge. Events are
// never updated or deleted; the log is the authority on who merged what.
type MergeEvent struct {
	ID                string    `json:"id"`
	Type              string    `json:"type"`
	SourceID          string    `json:"source_id"`
	TargetID          string    `json:"target_id"`
	ActorID           string    `json:"actor_id"`
	AffectedListCount int       `json:"affected_list_count"`
	Timestamp         time.Time `json:"timestamp"`
}

// ExclusionPair marks two album IDs as deliberately distinct releases that
// must never be offered as merge candidates for each other. The pair is
// unordered; Normalize fixes storage order and Matches checks both ways.
type ExclusionPair struct {
	AlbumID1  string    `json:"album_id_1"`
	AlbumID2  string    `json:"album_id_2"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Normalize returns the pair with its IDs in lexicographic order so that
// (a, b) and (b, a) store under the same key.
func (e ExclusionPair) Normalize() ExclusionPair {
	if e.AlbumID2 < e.AlbumID1 {
		e.AlbumID1, e.AlbumID2 = e.AlbumID2, e.AlbumID1
	}
	return e
}

// Matches reports whether this pair excludes the given two IDs,
// in either order.
func (e ExclusionPair) Matches(a, b string) bool {
	return (e.AlbumID1 == a && e.AlbumID2 == b) || (e.AlbumID1 == b && e.AlbumID2 == a)
}
