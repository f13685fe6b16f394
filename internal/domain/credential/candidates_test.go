package credential_test

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/portscheduler-go/internal/domain/credential"
)

func TestFastPathCandidates(t *testing.T) {
	assert.Equal(t, []string{"5", "6", "7", "8", "9"}, slices.Collect(credential.FastPathCandidates()))
}

func TestCandidates_LastSymbolIsTheOuterLoop(t *testing.T) {
	got := slices.Collect(credential.Candidates([]string{"8"}, 2))
	assert.Equal(t, []string{"85", "86", "87", "88", "89"}, got)
}

func TestCandidates_InteriorCountsFromTheLeft(t *testing.T) {
	got := slices.Collect(credential.Candidates([]string{"5"}, 4))
	require.Len(t, got, 5*36)

	assert.Equal(t, "5555", got[0])
	assert.Equal(t, "5655", got[1])
	assert.Equal(t, "5.55", got[5])
	assert.Equal(t, "5565", got[6])
	assert.Equal(t, "5..5", got[35])
	assert.Equal(t, "5556", got[36])
	assert.Equal(t, "5..9", got[len(got)-1])
}

func TestCandidates_PrefixesInBucketOrder(t *testing.T) {
	got := slices.Collect(credential.Candidates([]string{"7", "5"}, 2))
	assert.Equal(t, []string{"75", "76", "77", "78", "79", "55", "56", "57", "58", "59"}, got)
}

func TestCandidates_AreWellFormedAndUnique(t *testing.T) {
	prefixes := credential.PrefixSpace(2)
	seen := make(map[string]struct{})
	for c := range credential.Candidates(prefixes, 6) {
		require.True(t, credential.IsWellFormed(c, 6), c)
		_, dup := seen[c]
		require.False(t, dup, c)
		seen[c] = struct{}{}
	}
	assert.Equal(t, int64(len(seen)), credential.SpaceSize(prefixes, 6))
	assert.Equal(t, int64(5*5*6*6*6*6), int64(len(seen)))
}

func TestCandidates_StopsWhenConsumerStops(t *testing.T) {
	var got []string
	for c := range credential.Candidates([]string{"5", "6"}, 3) {
		got = append(got, c)
		if c == "565" {
			break
		}
	}
	assert.Equal(t, []string{"555", "565"}, got)
}

func TestCandidates_SkipsPrefixesAsLongAsTheCredential(t *testing.T) {
	assert.Empty(t, slices.Collect(credential.Candidates([]string{"55"}, 2)))
	assert.Zero(t, credential.SpaceSize([]string{"55"}, 2))
}

func TestIsWellFormed(t *testing.T) {
	tests := []struct {
		value  string
		length int
		want   bool
	}{
		{"7", 1, true},
		{".", 1, false},
		{"5.5", 3, true},
		{".55", 3, false},
		{"55.", 3, false},
		{"5a5", 3, false},
		{"555", 2, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, credential.IsWellFormed(tt.value, tt.length), "%q/%d", tt.value, tt.length)
	}
}
