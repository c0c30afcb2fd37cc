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

func TestPutExclusion_SymmetricLookup(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	pair := domain.ExclusionPair{
		AlbumID1:  "manual-live",
		AlbumID2:  "6dVIqQ8qmQ5GBnJ9shOYGE",
		CreatedBy: "user-admin",
	}
	require.NoError(t, s.PutExclusion(ctx, pair))

	excluded, err := s.Excluded(ctx, "manual-live", "6dVIqQ8qmQ5GBnJ9shOYGE")
	require.NoError(t, err)
	assert.True(t, excluded)

	// The reversed order must hit the same key.
	excluded, err = s.Excluded(ctx, "6dVIqQ8qmQ5GBnJ9shOYGE", "manual-live")
	require.NoError(t, err)
	assert.True(t, excluded)

	excluded, err = s.Excluded(ctx, "manual-live", "manual-other")
	require.NoError(t, err)
	assert.False(t, excluded)
}

func TestPutExclusion_IdempotentAcrossOrderings(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.PutExclusion(ctx, domain.ExclusionPair{AlbumID1: "manual-a", AlbumID2: "manual-b", CreatedBy: "user-1"}))
	require.NoError(t, s.PutExclusion(ctx, domain.ExclusionPair{AlbumID1: "manual-b", AlbumID2: "manual-a", CreatedBy: "user-2"}))

	pairs, err := s.Exclusions(ctx)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "manual-a", pairs[0].AlbumID1, "stored sorted")
	assert.Equal(t, "manual-b", pairs[0].AlbumID2)
	assert.False(t, pairs[0].CreatedAt.IsZero())
}

func TestPutExclusion_Validation(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := s.PutExclusion(ctx, domain.ExclusionPair{AlbumID1: "", AlbumID2: "manual-b"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))

	err = s.PutExclusion(ctx, domain.ExclusionPair{AlbumID1: "manual-a", AlbumID2: "manual-a"})
	assert.True(t, errors.Is(err, domainerrors.ErrValidation))
}
