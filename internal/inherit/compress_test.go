package inherit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

// countingSource serves albums from a map and counts fetches per ID.
type countingSource struct {
	albums map[string]*domain.Album
	calls  map[string]int
}

func newCountingSource(albums ...*domain.Album) *countingSource {
	s := &countingSource{
		albums: make(map[string]*domain.Album),
		calls:  make(map[string]int),
	}
	for _, a := range albums {
		s.albums[a.ID] = a
	}
	return s
}

func (s *countingSource) AlbumByID(_ context.Context, id string) (*domain.Album, error) {
	s.calls[id]++
	return s.albums[id], nil
}

func testAlbum() *domain.Album {
	length := int64(261_000)
	return &domain.Album{
		ID:          "6dVIqQ8qmQ5GBnJ9shOYGE",
		Artist:      "Mgła",
		Album:       "Exercises in Futility",
		ReleaseDate: "2015-09-04",
		Country:     "PL",
		Genre1:      "Black Metal",
		Tracks: []domain.Track{
			{Name: "Exercises in Futility I", LengthMillis: &length},
			{Name: "Exercises in Futility II"},
		},
	}
}

func TestCompressRow_EqualOverrideCollapses(t *testing.T) {
	album := testAlbum()
	lookup := NewLookup(newCountingSource(album))

	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		AlbumID:  album.ID,
		Genre1:   domain.Override("Black Metal"),
		Country:  domain.Override("PL"),
		Comments: "grim",
	}

	got, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)

	assert.False(t, got.Genre1.Overridden(), "override equal to canonical must compress away")
	assert.False(t, got.Country.Overridden())
	assert.Equal(t, "grim", got.Comments, "row-only fields are never touched")
}

func TestCompressRow_DivergentOverrideSurvives(t *testing.T) {
	album := testAlbum()
	lookup := NewLookup(newCountingSource(album))

	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		AlbumID:  album.ID,
		Genre1:   domain.Override("Atmospheric Black Metal"),
	}

	got, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)

	require.True(t, got.Genre1.Overridden())
	assert.Equal(t, "Atmospheric Black Metal", got.Genre1.Or(""))
}

func TestCompressRow_EmptyStringFoldsToAbsent(t *testing.T) {
	album := testAlbum()
	album.Genre2 = "" // canonical has no second genre
	lookup := NewLookup(newCountingSource(album))

	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		AlbumID:  album.ID,
		Genre2:   domain.Override(""),
	}

	got, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)

	assert.False(t, got.Genre2.Overridden(), "empty override against empty canonical is absent on both sides")
}

func TestCompressRow_EmptyOverrideAgainstValueSurvives(t *testing.T) {
	album := testAlbum()
	lookup := NewLookup(newCountingSource(album))

	// The user explicitly blanked the genre; the album has one. That is a
	// deliberate override of "nothing" and must not collapse.
	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		AlbumID:  album.ID,
		Genre1:   domain.Override(""),
	}

	got, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)

	assert.True(t, got.Genre1.Overridden())
}

func TestCompressRow_TracksStructuralEquality(t *testing.T) {
	album := testAlbum()
	lookup := NewLookup(newCountingSource(album))

	// Structurally identical track list built independently.
	length := int64(261_000)
	same := []domain.Track{
		{Name: "Exercises in Futility I", LengthMillis: &length},
		{Name: "Exercises in Futility II"},
	}
	reordered := []domain.Track{
		{Name: "Exercises in Futility II"},
		{Name: "Exercises in Futility I", LengthMillis: &length},
	}

	row := domain.ListRow{ListID: "list-1", Position: 1, AlbumID: album.ID, Tracks: domain.Override(same)}
	got, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)
	assert.False(t, got.Tracks.Overridden(), "deep-equal track list compresses away")

	row.Tracks = domain.Override(reordered)
	got, err = CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)
	assert.True(t, got.Tracks.Overridden(), "order matters")
}

func TestCompressRow_NoAlbumReferencePassesThrough(t *testing.T) {
	source := newCountingSource()
	lookup := NewLookup(source)

	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		Artist:   domain.Override("Unsigned Band"),
		Genre1:   domain.Override("Demo"),
	}

	got, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)

	assert.True(t, got.Artist.Overridden())
	assert.True(t, got.Genre1.Overridden())
	assert.Empty(t, source.calls, "no reference, no lookup")
}

func TestCompressRow_DanglingReferencePassesThrough(t *testing.T) {
	source := newCountingSource() // knows nothing
	lookup := NewLookup(source)

	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		AlbumID:  "manual-gone",
		Artist:   domain.Override("Ghost"),
	}

	got, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)
	assert.True(t, got.Artist.Overridden())
}

func TestLookup_MemoizesPerBatch(t *testing.T) {
	album := testAlbum()
	source := newCountingSource(album)
	lookup := NewLookup(source)

	rows := make([]domain.ListRow, 50)
	for i := range rows {
		rows[i] = domain.ListRow{
			ListID:   "list-1",
			Position: i + 1,
			AlbumID:  album.ID,
			Genre1:   domain.Override("Black Metal"),
		}
	}
	// A dangling reference repeated across the batch.
	rows[7].AlbumID = "manual-gone"
	rows[9].AlbumID = "manual-gone"

	_, err := CompressRows(context.Background(), rows, lookup)
	require.NoError(t, err)

	assert.Equal(t, 1, source.calls[album.ID], "one fetch per album per batch")
	assert.Equal(t, 1, source.calls["manual-gone"], "misses are memoized too")
}

func TestLookup_ResetStartsANewBatch(t *testing.T) {
	album := testAlbum()
	source := newCountingSource(album)
	lookup := NewLookup(source)

	_, err := lookup.Album(context.Background(), album.ID)
	require.NoError(t, err)
	_, err = lookup.Album(context.Background(), album.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, source.calls[album.ID])

	lookup.Reset()

	_, err = lookup.Album(context.Background(), album.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, source.calls[album.ID], "reset must drop memoized entries")
}

func TestResolveRow_FieldsFallBackIndependently(t *testing.T) {
	album := testAlbum()
	lookup := NewLookup(newCountingSource(album))

	row := domain.ListRow{
		ListID:    "list-1",
		Position:  3,
		AlbumID:   album.ID,
		Genre1:    domain.Override("Atmospheric Black Metal"),
		Comments:  "side B is better",
		TrackPick: "Exercises in Futility II",
	}

	got, err := ResolveRow(context.Background(), row, lookup)
	require.NoError(t, err)

	// Overridden field keeps the row's value.
	assert.Equal(t, "Atmospheric Black Metal", got.Genre1)
	// Inherited fields take the canonical value.
	assert.Equal(t, "Mgła", got.Artist)
	assert.Equal(t, "Exercises in Futility", got.Album)
	assert.Equal(t, "PL", got.Country)
	assert.True(t, domain.TracksEqual(album.Tracks, got.Tracks))
	// Row-only fields ride along.
	assert.Equal(t, "side B is better", got.Comments)
	assert.Equal(t, "Exercises in Futility II", got.TrackPick)
}

func TestResolveRow_NoReferenceUsesOverridesOnly(t *testing.T) {
	lookup := NewLookup(newCountingSource())

	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		Artist:   domain.Override("Unsigned Band"),
	}

	got, err := ResolveRow(context.Background(), row, lookup)
	require.NoError(t, err)

	assert.Equal(t, "Unsigned Band", got.Artist)
	assert.Empty(t, got.Album)
	assert.Empty(t, got.Tracks)
}

func TestCompressThenResolve_RoundTrips(t *testing.T) {
	album := testAlbum()
	lookup := NewLookup(newCountingSource(album))

	// Artist matches the canonical record and will compress away; the
	// genre diverges and survives.
	row := domain.ListRow{
		ListID:   "list-1",
		Position: 1,
		AlbumID:  album.ID,
		Artist:   domain.Override("Mgła"),
		Genre1:   domain.Override("Atmospheric Black Metal"),
		Comments: "kept verbatim",
	}

	compressed, err := CompressRow(context.Background(), row, lookup)
	require.NoError(t, err)
	resolved, err := ResolveRow(context.Background(), compressed, lookup)
	require.NoError(t, err)

	assert.Equal(t, "Mgła", resolved.Artist, "compressed field reconstitutes from canonical")
	assert.Equal(t, "Atmospheric Black Metal", resolved.Genre1)
	assert.Equal(t, "kept verbatim", resolved.Comments)
}
