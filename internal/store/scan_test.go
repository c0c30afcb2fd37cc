package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

func TestScanYear(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	putTestUser(t, s, "user-1", "magnus")
	putTestUser(t, s, "user-2", "astrid")
	putTestList(t, s, "list-1", "user-1", "Magnus 2015", 2015)
	putTestList(t, s, "list-2", "user-2", "Astrid 2015", 2015)
	putTestList(t, s, "list-3", "user-1", "Magnus 2020", 2020)

	require.NoError(t, s.UpsertAlbum(ctx, &domain.Album{
		ID:     "6dVIqQ8qmQ5GBnJ9shOYGE",
		Artist: "Mgła",
		Album:  "Exercises in Futility",
	}))

	require.NoError(t, s.PutListRows(ctx, "list-1", []domain.ListRow{
		{Position: 1, AlbumID: "6dVIqQ8qmQ5GBnJ9shOYGE"},
		{Position: 2, Artist: domain.Override("Bell Witch"), AlbumTitle: domain.Override("Four Phantoms")},
	}))
	require.NoError(t, s.PutListRows(ctx, "list-2", []domain.ListRow{
		{Position: 1, AlbumID: "6dVIqQ8qmQ5GBnJ9shOYGE", Artist: domain.Override("MGLA")},
	}))
	require.NoError(t, s.PutListRows(ctx, "list-3", []domain.ListRow{
		{Position: 1, Artist: domain.Override("Oranssi Pazuzu"), AlbumTitle: domain.Override("Mestarin kynsi")},
	}))

	scanned, err := s.ScanYear(ctx, 2015)
	require.NoError(t, err)
	require.Len(t, scanned, 3, "the 2020 list stays out of a 2015 scan")

	byListAndPos := make(map[string]ScannedRow, len(scanned))
	for _, row := range scanned {
		byListAndPos[row.ListID+":"+string(rune('0'+row.Position))] = row
	}

	first := byListAndPos["list-1:1"]
	assert.Equal(t, "Mgła", first.Artist, "resolved from canonical")
	assert.Equal(t, "Exercises in Futility", first.Album)
	assert.Equal(t, "magnus", first.Username)
	assert.Equal(t, "Magnus 2015", first.ListName)
	assert.Equal(t, "6dVIqQ8qmQ5GBnJ9shOYGE", first.AlbumID)
	assert.False(t, first.RowUpdatedAt.IsZero())

	second := byListAndPos["list-1:2"]
	assert.Equal(t, "Bell Witch", second.Artist, "override-only row carries its own fields")
	assert.Empty(t, second.AlbumID)

	third := byListAndPos["list-2:1"]
	assert.Equal(t, "MGLA", third.Artist, "override wins over canonical in scans too")
	assert.Equal(t, "Exercises in Futility", third.Album)
	assert.Equal(t, "astrid", third.Username)
}

func TestScanYear_EmptyYear(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	scanned, err := s.ScanYear(context.Background(), 1987)
	require.NoError(t, err)
	assert.Empty(t, scanned)
}
