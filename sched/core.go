// Core records and the rectangular grid geometry of the tiled system.

package sched

import (
	"errors"
	"fmt"
)

const (
	// InvalidCoreID is the sentinel returned when no core could be found.
	InvalidCoreID = -1
	// InvalidThreadID marks a core with no thread attached.
	InvalidThreadID = -1
	// UnassignedTaskID marks a free core.
	UnassignedTaskID = -1
)

// Core is one simulated CPU in the tiled grid.
// A core is free iff AssignedTaskID == UnassignedTaskID. A core may be
// assigned to a task but have no thread attached yet: that is the state
// between mapping and thread creation.
type Core struct {
	Index            int
	AssignedTaskID   int  // UnassignedTaskID while free
	AssignedThreadID int  // InvalidThreadID while unattached
	MaskAllowed      bool // Static config bit; masked-out cores are never used.
}

// ErrNonRectangularGrid is returned when the core count cannot be arranged
// into the rows x columns rectangle the mapping policies assume.
var ErrNonRectangularGrid = errors.New("invalid system size, expected rectangular-shaped system")

// Grid describes the rectangular arrangement of the cores.
// Rows is the largest divisor of the core count not exceeding its square
// root; Columns is coreCount / Rows.
type Grid struct {
	Rows    int
	Columns int
}

// NewGrid computes the grid geometry for numCores cores.
func NewGrid(numCores int) (Grid, error) {
	if numCores <= 0 {
		return Grid{}, fmt.Errorf("%w: %d cores", ErrNonRectangularGrid, numCores)
	}
	rows := 1
	for r := 2; r*r <= numCores; r++ {
		if numCores%r == 0 {
			rows = r
		}
	}
	columns := numCores / rows
	if rows*columns != numCores {
		return Grid{}, fmt.Errorf("%w: %d cores", ErrNonRectangularGrid, numCores)
	}
	return Grid{Rows: rows, Columns: columns}, nil
}

// NumCores returns the total number of cores in the grid.
func (g Grid) NumCores() int {
	return g.Rows * g.Columns
}

// CoreAt returns the index of the core at row y, column x.
func (g Grid) CoreAt(y, x int) (int, error) {
	if y < 0 || y >= g.Rows || x < 0 || x >= g.Columns {
		return InvalidCoreID, fmt.Errorf("invalid core coordinates: %d, %d", y, x)
	}
	return y*g.Columns + x, nil
}
