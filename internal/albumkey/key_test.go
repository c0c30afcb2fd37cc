package albumkey

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey_CaseAndWhitespace(t *testing.T) {
	want := NormalizeKey("The Beatles", "Abbey Road")

	tests := []struct {
		name   string
		artist string
		album  string
	}{
		{"upper case", "THE BEATLES", "ABBEY ROAD"},
		{"lower case", "the beatles", "abbey road"},
		{"padded", "  The Beatles  ", " Abbey Road "},
		{"repeated interior whitespace", "The   Beatles", "Abbey    Road"},
		{"article dropped by the source", "Beatles", "Abbey Road"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, NormalizeKey(tt.artist, tt.album))
		})
	}
}

func TestNormalizeKey_Punctuation(t *testing.T) {
	assert.Equal(t,
		NormalizeKey("ACDC", "Back in Black"),
		NormalizeKey("AC/DC", "Back in Black"))

	assert.Equal(t,
		NormalizeKey("Guns N Roses", "Appetite for Destruction"),
		NormalizeKey("Guns N' Roses", "Appetite for Destruction"))

	assert.Equal(t,
		NormalizeKey("Guns N Roses", "Appetite for Destruction"),
		NormalizeKey("Guns N’ Roses", "Appetite for Destruction"))

	assert.Equal(t,
		NormalizeKey("Simon and Garfunkel", "Bookends"),
		NormalizeKey("Simon & Garfunkel", "Bookends"))
}

func TestNormalizeKey_EditionSuffixes(t *testing.T) {
	want := NormalizeKey("Radiohead", "OK Computer")

	tests := []struct {
		name  string
		album string
	}{
		{"parenthesized", "OK Computer (Deluxe Edition)"},
		{"bracketed", "OK Computer [Remastered]"},
		{"stacked", "OK Computer (Deluxe) [2017 Remaster]"},
		{"padded suffix", "OK Computer   (Collector's Edition)  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, want, NormalizeKey("Radiohead", tt.album))
		})
	}
}

func TestNormalizeKey_SegmentRules(t *testing.T) {
	// Articles come off the artist only: an album called "The Wall" keeps its
	// article and must not collapse with "Wall".
	assert.NotEqual(t,
		NormalizeKey("Pink Floyd", "The Wall"),
		NormalizeKey("Pink Floyd", "Wall"))

	// Parentheticals come off the album only: an artist disambiguation
	// suffix is part of the identity.
	assert.NotEqual(t,
		NormalizeKey("Panther (UK)", "Panther"),
		NormalizeKey("Panther", "Panther"))
}

func TestNormalizeKey_TotalOnDegenerateInput(t *testing.T) {
	assert.Equal(t, "::", NormalizeKey("", ""))
	assert.Equal(t, "::", NormalizeKey("   ", "\t"))
	assert.Equal(t, "x::", NormalizeKey("x", ""))
	// An album that is nothing but a qualifier degrades to an empty segment.
	assert.Equal(t, "someone::", NormalizeKey("Someone", "(untitled)"))
}

func TestNormalizeKey_Idempotent(t *testing.T) {
	pairs := [][2]string{
		{"The Beatles", "Abbey Road"},
		{"AC/DC", "Back in Black"},
		{"Guns N' Roses", "Appetite for Destruction (Deluxe)"},
		{"Simon & Garfunkel", "Bookends [Mono]"},
		{"A Perfect Circle", "Mer de Noms"},
		{"", ""},
	}

	for _, p := range pairs {
		key := NormalizeKey(p[0], p[1])
		segments := strings.SplitN(key, Separator, 2)
		assert.Equal(t, key, NormalizeKey(segments[0], segments[1]),
			"renormalizing %q must be a fixpoint", key)
	}
}

func TestBasicNormalizeKey_OnlyFoldsAndTrims(t *testing.T) {
	// The blunt variant keeps edition suffixes and articles verbatim.
	assert.Equal(t,
		"radiohead::ok computer (deluxe edition)",
		BasicNormalizeKey("Radiohead", "OK Computer (Deluxe Edition)"))

	assert.Equal(t,
		"the beatles::revolver",
		BasicNormalizeKey(" The Beatles ", "Revolver"))

	assert.NotEqual(t,
		BasicNormalizeKey("The Beatles", "Revolver"),
		BasicNormalizeKey("Beatles", "Revolver"))

	assert.NotEqual(t,
		BasicNormalizeKey("Radiohead", "OK Computer (Deluxe Edition)"),
		BasicNormalizeKey("Radiohead", "OK Computer"))

	// But the sophisticated variant collapses both.
	assert.Equal(t,
		NormalizeKey("The Beatles", "Revolver"),
		NormalizeKey("Beatles", "Revolver"))
	assert.Equal(t,
		NormalizeKey("Radiohead", "OK Computer (Deluxe Edition)"),
		NormalizeKey("Radiohead", "OK Computer"))
}
