package cache

// Event is one invalidation request flowing from a write path to the fanout
// worker. Reason is only for logs.
type Event struct {
	Pattern string
	Reason  string
}

// Reasons attached to emitted events.
const (
	ReasonAlbumUpdate = "album_update"
	ReasonAlbumMerge  = "album_merge"
	ReasonListWrite   = "list_write"
)

// NewUserInvalidation builds an event that invalidates one user's cached
// responses.
func NewUserInvalidation(reason, userID string) Event {
	return Event{Pattern: UserPattern(userID), Reason: reason}
}
