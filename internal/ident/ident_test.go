package ident

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypedIDsCarryPrefix(t *testing.T) {
	require.NoError(t, Validate(NewSectionID(), PrefixSection))
	require.NoError(t, Validate(NewLabelID(), PrefixLabel))
	require.NoError(t, Validate(NewChartID(), PrefixChart))
	require.NoError(t, Validate(NewUserID(), PrefixUser))
	require.NoError(t, Validate(NewSnapshotID(), PrefixSnapshot))

	assert.Error(t, Validate(NewSectionID(), PrefixLabel))
	assert.Error(t, Validate("not a typeid", PrefixSection))
}

func TestTypedIDsAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for range 1000 {
		id := NewSectionID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestSeatID(t *testing.T) {
	id := SeatID("Balcony")
	require.True(t, strings.HasPrefix(id, "Balcony-"))

	suffix := strings.TrimPrefix(id, "Balcony-")
	require.Len(t, suffix, 3)
	for _, r := range suffix {
		assert.Contains(t, seatSuffixAlphabet, string(r))
	}
}

func TestGridSeatID(t *testing.T) {
	assert.Equal(t, "Orchestra-A-1", GridSeatID("Orchestra", "A", 1))
	assert.Equal(t, "Orchestra-AA-12", GridSeatID("Orchestra", "AA", 12))
}

func TestFreshSkipsTakenIDs(t *testing.T) {
	ids := []string{"x", "x", "y"}
	i := 0
	gen := func() string {
		id := ids[i]
		i++
		return id
	}

	taken := map[string]struct{}{"x": {}}
	got := Fresh(gen, taken)
	assert.Equal(t, "y", got)
	assert.Contains(t, taken, "y")
}
