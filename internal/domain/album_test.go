package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAlbum_IDNamespaces(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		manual   bool
		internal bool
	}{
		{"manual album", "manual-V1StGXR8_Z5jdHi6B-myT", true, false},
		{"imported album", "internal-fx6T41mSPreQD1Wie26IT", false, true},
		{"streaming id", "4myTppRgh0rojLxx8RycOp", false, false},
		{"uuid", "f47ac10b-58cc-4372-a567-0e02b2c3d479", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Album{ID: tt.id}
			assert.Equal(t, tt.manual, a.IsManual())
			assert.Equal(t, tt.internal, a.IsInternal())
		})
	}
}

func TestAlbum_HasIdentity(t *testing.T) {
	assert.True(t, (&Album{Artist: "Ulcerate"}).HasIdentity())
	assert.True(t, (&Album{Album: "Stare Into Death and Be Still"}).HasIdentity())
	assert.False(t, (&Album{Artist: "   ", Album: ""}).HasIdentity())
}

func TestTracksEqual(t *testing.T) {
	ms := func(v int64) *int64 { return &v }

	tests := []struct {
		name  string
		a     []Track
		b     []Track
		equal bool
	}{
		{"nil equals empty", nil, []Track{}, true},
		{
			"same names and durations",
			[]Track{{Name: "Abrogation", LengthMillis: ms(321_000)}},
			[]Track{{Name: "Abrogation", LengthMillis: ms(321_000)}},
			true,
		},
		{
			"both durations absent",
			[]Track{{Name: "Abrogation"}},
			[]Track{{Name: "Abrogation"}},
			true,
		},
		{
			"different order",
			[]Track{{Name: "A"}, {Name: "B"}},
			[]Track{{Name: "B"}, {Name: "A"}},
			false,
		},
		{
			"duration absent on one side",
			[]Track{{Name: "Abrogation", LengthMillis: ms(321_000)}},
			[]Track{{Name: "Abrogation"}},
			false,
		},
		{
			"different durations",
			[]Track{{Name: "Abrogation", LengthMillis: ms(321_000)}},
			[]Track{{Name: "Abrogation", LengthMillis: ms(322_000)}},
			false,
		},
		{
			"different lengths",
			[]Track{{Name: "A"}},
			[]Track{{Name: "A"}, {Name: "B"}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, TracksEqual(tt.a, tt.b))
		})
	}
}

func TestExclusionPair_NormalizeAndMatch(t *testing.T) {
	pair := ExclusionPair{AlbumID1: "manual-zzz", AlbumID2: "manual-aaa"}.Normalize()

	assert.Equal(t, "manual-aaa", pair.AlbumID1)
	assert.Equal(t, "manual-zzz", pair.AlbumID2)

	assert.True(t, pair.Matches("manual-aaa", "manual-zzz"))
	assert.True(t, pair.Matches("manual-zzz", "manual-aaa"))
	assert.False(t, pair.Matches("manual-aaa", "manual-bbb"))
}
