package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magnusoverli/sushe-online-sub003/internal/domain"
)

func TestGetStats(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	empty, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{}, empty)

	albums := []*domain.Album{
		{ID: "6dVIqQ8qmQ5GBnJ9shOYGE", Artist: "Radiohead", Album: "OK Computer"},
		{ID: "manual-V1StGXR8_Z5jdHi6Bmy", Artist: "Mgła", Album: "Exercises in Futility"},
		{ID: "internal-4f90d13a42Xn1pQ9z", Artist: "Burzum", Album: "Filosofem"},
	}
	for _, album := range albums {
		require.NoError(t, s.UpsertAlbum(ctx, album))
	}

	require.NoError(t, s.PutUser(ctx, &domain.User{ID: "user-1", Username: "magnus"}))
	require.NoError(t, s.PutList(ctx, &domain.List{ID: "list-1", UserID: "user-1", Name: "Magnus 2015", Year: 2015}))
	require.NoError(t, s.PutListRows(ctx, "list-1", []domain.ListRow{
		{ListID: "list-1", Position: 1, AlbumID: "6dVIqQ8qmQ5GBnJ9shOYGE"},
		{ListID: "list-1", Position: 2, AlbumID: "manual-V1StGXR8_Z5jdHi6Bmy"},
	}))
	require.NoError(t, s.PutExclusion(ctx, domain.ExclusionPair{
		AlbumID1:  "6dVIqQ8qmQ5GBnJ9shOYGE",
		AlbumID2:  "manual-V1StGXR8_Z5jdHi6Bmy",
		CreatedBy: "user-1",
	}))

	_, err = s.RepointAlbumRefs(ctx, "manual-V1StGXR8_Z5jdHi6Bmy", "6dVIqQ8qmQ5GBnJ9shOYGE", "user-1")
	require.NoError(t, err)

	// The repoint deleted the manual album and appended one merge event.
	// Row, list and user index keys must not leak into the record counts.
	stats, err := s.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		Albums:         2,
		ManualAlbums:   0,
		InternalAlbums: 1,
		Lists:          1,
		Rows:           2,
		Users:          1,
		Exclusions:     1,
		MergeEvents:    1,
	}, stats)
}
