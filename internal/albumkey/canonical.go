package albumkey

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

// streamingIDPattern is the 22-character base62 shape streaming catalogs
// use for album and track IDs.
var streamingIDPattern = regexp.MustCompile(`^[0-9A-Za-z]{22}$`)

// IsStreamingID reports whether id has the streaming-catalog ID shape.
func IsStreamingID(id string) bool {
	return streamingIDPattern.MatchString(id)
}

// IsUUID reports whether id is a canonical 8-4-4-4-12 hex UUID.
func IsUUID(id string) bool {
	return len(id) == 36 && uuid.Validate(id) == nil
}

// HasInternalPrefix reports whether id was minted during an import.
func HasInternalPrefix(id string) bool {
	return strings.HasPrefix(id, domain.InternalIDPrefix)
}

// HasManualPrefix reports whether id belongs to a hand-created album.
func HasManualPrefix(id string) bool {
	return strings.HasPrefix(id, domain.ManualIDPrefix)
}

// Rank orders identifiers by how re-resolvable they are against an external
// catalog. Lower is better. Streaming IDs and UUIDs can refresh cover art
// and genres later; internal and manual IDs carry no outside provenance.
func Rank(id string) int {
	switch {
	case IsStreamingID(id):
		return 0
	case IsUUID(id):
		return 1
	case !HasInternalPrefix(id) && !HasManualPrefix(id):
		return 2 // some other externally-sourced shape
	case HasInternalPrefix(id):
		return 3
	case HasManualPrefix(id):
		return 4
	default:
		return 5
	}
}

// SelectCanonical picks the identifier a duplicate group should converge on.
// Blank and whitespace-only entries are ignored; ties within a rank go to
// the earliest candidate; an empty field returns "".
func SelectCanonical(ids []string) string {
	best := ""
	bestRank := -1

	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		r := Rank(id)
		if bestRank == -1 || r < bestRank {
			best = id
			bestRank = r
		}
	}

	return best
}
