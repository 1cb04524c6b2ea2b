// Mapping policies choose the set of cores a task occupies.
// Implementations are pure: they never mutate scheduler state.

package sched

import (
	"errors"
	"fmt"
)

// MappingPolicy chooses cores for a task about to be admitted.
//
// available[i] is true for cores the policy may pick (allowed by the core
// mask and currently free); active[i] is true for cores already assigned to
// some task. The returned indices must all be available. Returning fewer
// than need indices signals a mapping failure; the caller leaves the task
// queued.
type MappingPolicy interface {
	Map(taskName string, need int, available, active []bool) []int
}

// ErrUnknownMappingPolicy is returned for an unrecognized mapping policy name.
var ErrUnknownMappingPolicy = errors.New("unknown mapping algorithm")

// MappingFirstUnused is the name of the first_unused policy.
const MappingFirstUnused = "first_unused"

// FirstUnused walks a configured preference order over the cores and picks
// the first available ones.
type FirstUnused struct {
	grid      Grid
	preferred []int // ordered preference list over core indices
}

// NewFirstUnused creates the first_unused policy with the given preference
// order. An empty order defaults to identity order over all cores.
func NewFirstUnused(grid Grid, preferred []int) *FirstUnused {
	if len(preferred) == 0 {
		preferred = seq(0, grid.NumCores()-1)
	}
	return &FirstUnused{grid: grid, preferred: preferred}
}

// Map returns the first need available cores in preference order. If fewer
// are available the returned list is short and the mapping attempt fails.
func (p *FirstUnused) Map(_ string, need int, available, _ []bool) []int {
	cores := make([]int, 0, need)
	for _, core := range p.preferred {
		if len(cores) == need {
			break
		}
		if core >= 0 && core < len(available) && available[core] {
			cores = append(cores, core)
		}
	}
	return cores
}

// newMappingPolicy creates a mapping policy by name.
// Valid names: "first_unused".
func newMappingPolicy(name string, grid Grid, preferred []int) (MappingPolicy, error) {
	switch name {
	case MappingFirstUnused:
		for _, core := range preferred {
			if core < 0 || core >= grid.NumCores() {
				return nil, fmt.Errorf("preferred core %d out of range [0, %d)", core, grid.NumCores())
			}
		}
		return NewFirstUnused(grid, preferred), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMappingPolicy, name)
	}
}
