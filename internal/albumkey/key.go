// Package albumkey builds matching keys for album identity and picks the
// best identifier when several refer to the same logical album.
package albumkey

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Separator joins the artist and album segments of a normalized key.
const Separator = "::"

var (
	// editionSuffix matches one trailing parenthetical or bracketed
	// qualifier, e.g. "(deluxe edition)" or "[remastered]".
	editionSuffix = regexp.MustCompile(`\s*(\([^()]*\)|\[[^\[\]]*\])\s*$`)

	// leadingArticle matches a definite/indefinite article as the first
	// whole word.
	leadingArticle = regexp.MustCompile(`^(the|a|an)\s+`)
)

// NormalizeKey converts an (artist, album) pair of free text into the key
// used to decide whether two rows mean the same album. Deterministic and
// total: nil-ish inputs degrade to empty segments.
//
// Per segment: case-fold and trim; strip trailing edition qualifiers from
// the album only; strip one leading article from the artist only; drop
// apostrophes and slashes; turn "&" into "and"; collapse whitespace.
func NormalizeKey(artist, album string) string {
	return normalizeSegment(artist, segmentArtist) + Separator + normalizeSegment(album, segmentAlbum)
}

// BasicNormalizeKey is the blunt variant: case-fold and trim, nothing else.
// Legacy imports use it deliberately so historical rows that differ only by
// edition suffix or article stay distinct instead of over-merging.
func BasicNormalizeKey(artist, album string) string {
	return foldTrim(artist) + Separator + foldTrim(album)
}

type segmentKind int

const (
	segmentArtist segmentKind = iota
	segmentAlbum
)

func normalizeSegment(s string, kind segmentKind) string {
	s = foldTrim(s)

	if kind == segmentAlbum {
		// Strip stacked qualifiers: "ok computer (deluxe) [remaster]".
		for {
			stripped := strings.TrimSpace(editionSuffix.ReplaceAllString(s, ""))
			if stripped == s {
				break
			}
			s = stripped
		}
	}

	if kind == segmentArtist {
		s = leadingArticle.ReplaceAllString(s, "")
	}

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")
	s = strings.ReplaceAll(s, "’", "") // typographic apostrophe
	s = strings.ReplaceAll(s, "/", "")

	return strings.Join(strings.Fields(s), " ")
}

// foldTrim lower-cases via Unicode case folding and trims surrounding space.
// A fresh Caser per call; they are not safe for concurrent reuse.
func foldTrim(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
