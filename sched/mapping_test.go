package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTrue(n int) []bool {
	out := make([]bool, n)
	for i := range out {
		out[i] = true
	}
	return out
}

func TestFirstUnused_PicksInPreferenceOrder(t *testing.T) {
	// GIVEN a 2x2 grid with preference order [3, 2, 1, 0]
	grid, err := NewGrid(4)
	require.NoError(t, err)
	policy := NewFirstUnused(grid, []int{3, 2, 1, 0})

	// WHEN two cores are requested with everything available
	cores := policy.Map("parsec-swaptions-simsmall-1", 2, allTrue(4), make([]bool, 4))

	// THEN the first two preferred cores are returned in order
	assert.Equal(t, []int{3, 2}, cores)
}

func TestFirstUnused_SkipsUnavailable(t *testing.T) {
	grid, err := NewGrid(4)
	require.NoError(t, err)
	policy := NewFirstUnused(grid, nil) // identity order

	available := []bool{false, true, false, true}
	active := []bool{true, false, true, false}

	cores := policy.Map("parsec-swaptions-simsmall-1", 2, available, active)

	assert.Equal(t, []int{1, 3}, cores)
}

func TestFirstUnused_ShortListOnInsufficiency(t *testing.T) {
	// GIVEN only one available core
	grid, err := NewGrid(4)
	require.NoError(t, err)
	policy := NewFirstUnused(grid, nil)
	available := []bool{false, false, true, false}

	// WHEN three cores are requested
	cores := policy.Map("parsec-dedup-simsmall-1", 3, available, make([]bool, 4))

	// THEN the returned list is short, signalling mapping failure
	assert.Equal(t, []int{2}, cores)
}

func TestNewMappingPolicy_UnknownName(t *testing.T) {
	grid, err := NewGrid(4)
	require.NoError(t, err)

	_, err = newMappingPolicy("best_fit", grid, nil)

	assert.ErrorIs(t, err, ErrUnknownMappingPolicy)
}

func TestNewMappingPolicy_PreferredCoreOutOfRange(t *testing.T) {
	grid, err := NewGrid(4)
	require.NoError(t, err)

	_, err = newMappingPolicy(MappingFirstUnused, grid, []int{0, 4})

	assert.Error(t, err)
}
