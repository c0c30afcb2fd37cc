package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
	domainerrors "github.com/magnusoverli/sushe-online-sub003/internal/errors"
)

func TestPutListRows_CompressesAgainstCanonical(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-1", "magnus")
	putTestList(t, s, "list-1", "user-1", "2015 Albums", 2015)
	require.NoError(t, s.UpsertAlbum(ctx, &domain.Album{
		ID:     "6dVIqQ8qmQ5GBnJ9shOYGE",
		Artist: "Mgła",
		Album:  "Exercises in Futility",
		Genre1: "Black Metal",
	}))

	rows := []domain.ListRow{{
		Position: 1,
		AlbumID:  "6dVIqQ8qmQ5GBnJ9shOYGE",
		Artist:   domain.Override("Mgła"),        // equals canonical, must collapse
		Genre1:   domain.Override("Black Metal"), // equals canonical, must collapse
		Genre2:   domain.Override("DSBM"),        // genuine override, must survive
	}}
	require.NoError(t, s.PutListRows(ctx, "list-1", rows))

	stored, err := s.ListRows(ctx, "list-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)

	assert.False(t, stored[0].Artist.Overridden())
	assert.False(t, stored[0].Genre1.Overridden())
	assert.True(t, stored[0].Genre2.Overridden())
	assert.Equal(t, "list-1", stored[0].ListID)
	assert.False(t, stored[0].UpdatedAt.IsZero())
}

func TestPutListRows_ValidatesPositions(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-1", "magnus")
	putTestList(t, s, "list-1", "user-1", "2015 Albums", 2015)

	err := s.PutListRows(ctx, "list-1", []domain.ListRow{{Position: 0}})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	err = s.PutListRows(ctx, "list-1", []domain.ListRow{{Position: 1}, {Position: 1}})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}

func TestPutListRows_ListMustExist(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	err := s.PutListRows(context.Background(), "list-ghost", nil)
	assert.True(t, errors.Is(err, ErrListNotFound))
}

func TestPutListRows_ReplacesPreviousRows(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-1", "magnus")
	putTestList(t, s, "list-1", "user-1", "2015 Albums", 2015)
	putTestAlbum(t, s, "manual-old", "Old Artist", "Old Album")
	putTestAlbum(t, s, "manual-new", "New Artist", "New Album")

	first := []domain.ListRow{
		{Position: 1, AlbumID: "manual-old"},
		{Position: 2, AlbumID: "manual-old"},
	}
	require.NoError(t, s.PutListRows(ctx, "list-1", first))

	second := []domain.ListRow{{Position: 1, AlbumID: "manual-new"}}
	require.NoError(t, s.PutListRows(ctx, "list-1", second))

	stored, err := s.ListRows(ctx, "list-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "manual-new", stored[0].AlbumID)

	// The replaced rows' reference index entries must be gone too.
	oldRefs, err := s.RowsReferencingAlbum(ctx, "manual-old")
	require.NoError(t, err)
	assert.Empty(t, oldRefs)

	newRefs, err := s.RowsReferencingAlbum(ctx, "manual-new")
	require.NoError(t, err)
	assert.Len(t, newRefs, 1)
}

func TestListRows_PositionOrder(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-1", "magnus")
	putTestList(t, s, "list-1", "user-1", "2015 Albums", 2015)

	rows := []domain.ListRow{
		{Position: 3, Artist: domain.Override("C"), AlbumTitle: domain.Override("c")},
		{Position: 1, Artist: domain.Override("A"), AlbumTitle: domain.Override("a")},
		{Position: 12, Artist: domain.Override("L"), AlbumTitle: domain.Override("l")},
		{Position: 2, Artist: domain.Override("B"), AlbumTitle: domain.Override("b")},
	}
	require.NoError(t, s.PutListRows(ctx, "list-1", rows))

	stored, err := s.ListRows(ctx, "list-1")
	require.NoError(t, err)
	require.Len(t, stored, 4)

	var positions []int
	for _, row := range stored {
		positions = append(positions, row.Position)
	}
	assert.Equal(t, []int{1, 2, 3, 12}, positions, "zero padding keeps numeric order")
}

func TestResolvedListRows(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-1", "magnus")
	putTestList(t, s, "list-1", "user-1", "2015 Albums", 2015)
	require.NoError(t, s.UpsertAlbum(ctx, &domain.Album{
		ID:          "6dVIqQ8qmQ5GBnJ9shOYGE",
		Artist:      "Mgła",
		Album:       "Exercises in Futility",
		ReleaseDate: "2015-09-04",
		Country:     "Poland",
		Genre1:      "Black Metal",
	}))

	rows := []domain.ListRow{
		{
			Position: 1,
			AlbumID:  "6dVIqQ8qmQ5GBnJ9shOYGE",
			Genre1:   domain.Override("Atmospheric Black Metal"),
			Comments: "album of the year",
		},
		{
			Position:   2,
			AlbumID:    "manual-ghost", // dangling reference resolves to overrides only
			Artist:     domain.Override("Unknown Artist"),
			AlbumTitle: domain.Override("Lost Album"),
		},
	}
	require.NoError(t, s.PutListRows(ctx, "list-1", rows))

	resolved, err := s.ResolvedListRows(ctx, "list-1")
	require.NoError(t, err)
	require.Len(t, resolved, 2)

	assert.Equal(t, "Mgła", resolved[0].Artist, "inherited from canonical")
	assert.Equal(t, "Atmospheric Black Metal", resolved[0].Genre1, "override wins")
	assert.Equal(t, "Poland", resolved[0].Country)
	assert.Equal(t, "album of the year", resolved[0].Comments)

	assert.Equal(t, "Unknown Artist", resolved[1].Artist)
	assert.Equal(t, "Lost Album", resolved[1].Album)
	assert.Empty(t, resolved[1].Country)
}

func TestUsersReferencingAlbum(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-b", "bjorn")
	putTestUser(t, s, "user-a", "astrid")
	putTestList(t, s, "list-b", "user-b", "Björn 2015", 2015)
	putTestList(t, s, "list-a", "user-a", "Astrid 2015", 2015)
	putTestAlbum(t, s, "manual-shared", "Shared Artist", "Shared Album")

	require.NoError(t, s.PutListRows(ctx, "list-b", []domain.ListRow{{Position: 1, AlbumID: "manual-shared"}}))
	require.NoError(t, s.PutListRows(ctx, "list-a", []domain.ListRow{{Position: 1, AlbumID: "manual-shared"}}))

	users, err := s.UsersReferencingAlbum(ctx, "manual-shared")
	require.NoError(t, err)
	assert.Equal(t, []string{"user-a", "user-b"}, users, "sorted, deduplicated")

	none, err := s.UsersReferencingAlbum(ctx, "manual-unreferenced")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPutListRows_InvalidatesOwner(t *testing.T) {
	s, emitter, cleanup := setupTestStoreWithEmitter(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-1", "magnus")
	putTestList(t, s, "list-1", "user-1", "2015 Albums", 2015)

	emitter.reset()
	require.NoError(t, s.PutListRows(ctx, "list-1", []domain.ListRow{
		{Position: 1, Artist: domain.Override("X"), AlbumTitle: domain.Override("Y")},
	}))

	assert.Equal(t, []string{":user-1"}, emitter.patterns())
}
