package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
	"github.com/magnusoverli/sushe-online-sub003/internal/store"
)

// duplicateFixture seeds two users whose 2015 lists hold the same album
// under two identifiers, plus an unrelated album with a single identity.
func duplicateFixture(t *testing.T, st *store.Store) {
	t.Helper()

	seedUser(t, st, "user-1", "magnus")
	seedUser(t, st, "user-2", "astrid")
	seedList(t, st, "list-1", "user-1", "Magnus 2015", 2015)
	seedList(t, st, "list-2", "user-2", "Astrid 2015", 2015)

	seedAlbum(t, st, &domain.Album{
		ID:     "1oW3v5Har9mvXnGk0x4fHH",
		Artist: "Radiohead",
		Album:  "OK Computer",
	})
	seedAlbum(t, st, &domain.Album{
		ID:     "0f7e419f-2d37-3de5-9b57-fe09a535a1d2",
		Artist: "Radiohead",
		Album:  "OK Computer (Deluxe Edition)",
	})
	seedAlbum(t, st, &domain.Album{
		ID:     "5Wl5s0mfsrTRYyfs5HdFzz",
		Artist: "Nirvana",
		Album:  "Nevermind",
	})

	seedRows(t, st, "list-1", []domain.ListRow{
		{Position: 1, AlbumID: "1oW3v5Har9mvXnGk0x4fHH", UpdatedAt: at(9)},
		{Position: 2, AlbumID: "5Wl5s0mfsrTRYyfs5HdFzz", UpdatedAt: at(9)},
	})
	seedRows(t, st, "list-2", []domain.ListRow{
		{Position: 1, AlbumID: "0f7e419f-2d37-3de5-9b57-fe09a535a1d2", UpdatedAt: at(12)},
	})
}

func TestFindDuplicates(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	duplicateFixture(t, st)
	svc := newTestDedup(st, nil)

	report, err := svc.FindDuplicates(ctx, "2015")
	require.NoError(t, err)

	assert.Equal(t, "2015", report.Year)
	assert.Equal(t, 2, report.UniqueAlbums)
	assert.Equal(t, 1, report.DuplicateGroups)
	require.Len(t, report.Duplicates, 1)

	group := report.Duplicates[0]
	assert.Equal(t, "radiohead::ok computer", group.NormalizedKey)

	// Display text follows the most recently written row, which carries the
	// reissue title; the normalized key is what groups them.
	assert.Equal(t, "Radiohead", group.Artist)
	assert.Equal(t, "OK Computer (Deluxe Edition)", group.Album)

	// Most recently written identifier leads the candidate list.
	assert.Equal(t, []string{
		"0f7e419f-2d37-3de5-9b57-fe09a535a1d2",
		"1oW3v5Har9mvXnGk0x4fHH",
	}, group.AlbumIDs)

	assert.ElementsMatch(t, []domain.DuplicateEntry{
		{
			AlbumID:  "1oW3v5Har9mvXnGk0x4fHH",
			UserID:   "user-1",
			Username: "magnus",
			ListID:   "list-1",
			ListName: "Magnus 2015",
			Position: 1,
		},
		{
			AlbumID:  "0f7e419f-2d37-3de5-9b57-fe09a535a1d2",
			UserID:   "user-2",
			Username: "astrid",
			ListID:   "list-2",
			ListName: "Astrid 2015",
			Position: 1,
		},
	}, group.Entries)
}

func TestFindDuplicates_NormalizationCollapsesSpellings(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	seedUser(t, st, "user-1", "magnus")
	seedList(t, st, "list-1", "user-1", "Magnus 1980", 1980)

	seedAlbum(t, st, &domain.Album{ID: "6j9xBdad5TJCKspw0sRbJv", Artist: "AC/DC", Album: "Back in Black"})
	seedAlbum(t, st, &domain.Album{ID: "719734db-b0e4-4d41-ac97-0b438efd8e5c", Artist: "ACDC", Album: "BACK IN BLACK"})

	seedRows(t, st, "list-1", []domain.ListRow{
		{Position: 1, AlbumID: "6j9xBdad5TJCKspw0sRbJv", UpdatedAt: at(9)},
		{Position: 2, AlbumID: "719734db-b0e4-4d41-ac97-0b438efd8e5c", UpdatedAt: at(10)},
	})

	report, err := newTestDedup(st, nil).FindDuplicates(ctx, "1980")
	require.NoError(t, err)

	assert.Equal(t, 1, report.UniqueAlbums)
	require.Len(t, report.Duplicates, 1)
	assert.Equal(t, "acdc::back in black", report.Duplicates[0].NormalizedKey)
	assert.Len(t, report.Duplicates[0].AlbumIDs, 2)
}

func TestFindDuplicates_SingleIdentifierIsNotADuplicate(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	seedUser(t, st, "user-1", "magnus")
	seedUser(t, st, "user-2", "astrid")
	seedList(t, st, "list-1", "user-1", "Magnus 2015", 2015)
	seedList(t, st, "list-2", "user-2", "Astrid 2015", 2015)

	seedAlbum(t, st, &domain.Album{ID: "2AEEsDmGNbOHNBmzKlK0jT", Artist: "Mgła", Album: "Exercises in Futility"})

	// Same identity on both lists, same identifier, plus one override-only
	// row with no identifier at all: neither situation is a duplicate.
	seedRows(t, st, "list-1", []domain.ListRow{
		{Position: 1, AlbumID: "2AEEsDmGNbOHNBmzKlK0jT", UpdatedAt: at(9)},
		{
			Position:   2,
			Artist:     domain.Override("Mgła"),
			AlbumTitle: domain.Override("Exercises in Futility"),
			UpdatedAt:  at(9),
		},
	})
	seedRows(t, st, "list-2", []domain.ListRow{
		{Position: 1, AlbumID: "2AEEsDmGNbOHNBmzKlK0jT", UpdatedAt: at(10)},
	})

	report, err := newTestDedup(st, nil).FindDuplicates(ctx, "2015")
	require.NoError(t, err)

	assert.Equal(t, 0, report.DuplicateGroups)
	assert.Empty(t, report.Duplicates)
	assert.Equal(t, 1, report.UniqueAlbums)
}

func TestFindDuplicates_ScopeValidation(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	svc := newTestDedup(st, nil)

	for _, scope := range []string{"", "20x5", "815", "20151"} {
		_, err := svc.FindDuplicates(context.Background(), scope)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "scope %q", scope)
	}
}

func TestFindDuplicates_EmptyYear(t *testing.T) {
	st, cleanup := setupTestStore(t)
	defer cleanup()

	report, err := newTestDedup(st, nil).FindDuplicates(context.Background(), "1987")
	require.NoError(t, err)

	assert.Equal(t, 0, report.DuplicateGroups)
	assert.Equal(t, 0, report.UniqueAlbums)
	assert.NotNil(t, report.Duplicates)
	assert.Empty(t, report.Duplicates)
}
