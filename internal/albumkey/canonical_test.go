package albumkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsStreamingID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"valid 22 char base62", "6dVIqQ8qmQ5GBnJ9shOYGE", true},
		{"too short", "6dVIqQ8qmQ5GBnJ9shOYG", false},
		{"too long", "6dVIqQ8qmQ5GBnJ9shOYGEx", false},
		{"contains hyphen", "6dVIqQ8qmQ5-BnJ9shOYGE", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsStreamingID(tt.id))
		})
	}
}

func TestIsUUID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want bool
	}{
		{"canonical form", "f47ac10b-58cc-4372-a567-0e02b2c3d479", true},
		{"upper case hex", "F47AC10B-58CC-4372-A567-0E02B2C3D479", true},
		{"no hyphens", "f47ac10b58cc4372a5670e02b2c3d479", false},
		{"braced", "{f47ac10b-58cc-4372-a567-0e02b2c3d479}", false},
		{"not hex", "g47ac10b-58cc-4372-a567-0e02b2c3d479", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUUID(tt.id))
		})
	}
}

func TestPrefixPredicates(t *testing.T) {
	assert.True(t, HasManualPrefix("manual-V1StGXR8_Z5jdHi6B-myT"))
	assert.False(t, HasManualPrefix("internal-V1StGXR8_Z5jdHi6B-myT"))
	assert.True(t, HasInternalPrefix("internal-V1StGXR8_Z5jdHi6B-myT"))
	assert.False(t, HasInternalPrefix("6dVIqQ8qmQ5GBnJ9shOYGE"))
}

func TestSelectCanonical_TierOrder(t *testing.T) {
	tests := []struct {
		name string
		ids  []string
		want string
	}{
		{
			"streaming id wins over everything",
			[]string{"manual-123", "6dVIqQ8qmQ5GBnJ9shOYGE", "internal-abc"},
			"6dVIqQ8qmQ5GBnJ9shOYGE",
		},
		{
			"streaming id beats uuid",
			[]string{"f47ac10b-58cc-4372-a567-0e02b2c3d479", "6dVIqQ8qmQ5GBnJ9shOYGE"},
			"6dVIqQ8qmQ5GBnJ9shOYGE",
		},
		{
			"uuid beats other external shapes",
			[]string{"mb-release-123", "f47ac10b-58cc-4372-a567-0e02b2c3d479"},
			"f47ac10b-58cc-4372-a567-0e02b2c3d479",
		},
		{
			"other external beats internal",
			[]string{"internal-abc", "mb-release-123"},
			"mb-release-123",
		},
		{
			"internal beats manual",
			[]string{"manual-abc", "internal-xyz"},
			"internal-xyz",
		},
		{
			"first in order within a tier",
			[]string{"manual-1", "manual-2"},
			"manual-1",
		},
		{
			"blank entries are skipped",
			[]string{"", "  ", "x"},
			"x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectCanonical(tt.ids))
		})
	}
}

func TestSelectCanonical_Empty(t *testing.T) {
	assert.Equal(t, "", SelectCanonical(nil))
	assert.Equal(t, "", SelectCanonical([]string{}))
	assert.Equal(t, "", SelectCanonical([]string{"", "   "}))
}

func TestRank_IsStable(t *testing.T) {
	// The reconciliation matcher sorts candidates by rank; the relative
	// order here is a policy commitment, not an implementation detail.
	assert.Less(t, Rank("6dVIqQ8qmQ5GBnJ9shOYGE"), Rank("f47ac10b-58cc-4372-a567-0e02b2c3d479"))
	assert.Less(t, Rank("f47ac10b-58cc-4372-a567-0e02b2c3d479"), Rank("mb-release-123"))
	assert.Less(t, Rank("mb-release-123"), Rank("internal-abc"))
	assert.Less(t, Rank("internal-abc"), Rank("manual-abc"))
}
