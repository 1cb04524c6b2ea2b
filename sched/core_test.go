package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrid_Geometry(t *testing.T) {
	tests := []struct {
		cores   int
		rows    int
		columns int
	}{
		{1, 1, 1},
		{2, 1, 2},
		{4, 2, 2},
		{6, 2, 3},
		{12, 3, 4},
		{16, 4, 4},
		{64, 8, 8},
		{7, 1, 7}, // prime: degenerates to a single row
	}
	for _, tt := range tests {
		grid, err := NewGrid(tt.cores)
		require.NoError(t, err, "NewGrid(%d)", tt.cores)
		assert.Equal(t, tt.rows, grid.Rows, "NewGrid(%d) rows", tt.cores)
		assert.Equal(t, tt.columns, grid.Columns, "NewGrid(%d) columns", tt.cores)
		assert.Equal(t, tt.cores, grid.NumCores())
	}
}

func TestNewGrid_InvalidSize(t *testing.T) {
	for _, cores := range []int{0, -4} {
		_, err := NewGrid(cores)
		assert.ErrorIs(t, err, ErrNonRectangularGrid, "NewGrid(%d)", cores)
	}
}

func TestGrid_CoreAt(t *testing.T) {
	grid, err := NewGrid(12) // 3x4
	require.NoError(t, err)

	core, err := grid.CoreAt(0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, core)

	core, err = grid.CoreAt(2, 3)
	require.NoError(t, err)
	assert.Equal(t, 11, core)

	core, err = grid.CoreAt(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 6, core)

	_, err = grid.CoreAt(3, 0)
	assert.Error(t, err, "row out of range")
	_, err = grid.CoreAt(0, 4)
	assert.Error(t, err, "column out of range")
	_, err = grid.CoreAt(-1, 0)
	assert.Error(t, err, "negative row")
}
