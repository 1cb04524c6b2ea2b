// Defines the Task struct that models one benchmark instance admitted through the
// open-system queue. Tracks arrival, start and departure timestamps plus lifecycle phase.

package sched

import (
	"fmt"
)

// TaskPhase represents the lifecycle phase of a task.
// Transitions are strictly forward:
// waiting -> queued -> active -> completed.
type TaskPhase string

const (
	PhaseWaitingToSchedule TaskPhase = "waiting"
	PhaseQueued            TaskPhase = "queued"
	PhaseActive            TaskPhase = "active"
	PhaseCompleted         TaskPhase = "completed"
)

// Task models a single benchmark instance in the open system.
// Each task has:
// - a descriptor name (suite-benchmark-input-parallelism)
// - a fixed core requirement from the profile table
// - arrival/start/departure timestamps in nanoseconds
// - a lifecycle phase
type Task struct {
	ID              int    // Stable index, 0..N-1
	Name            string // Descriptor string, e.g. "parsec-blackscholes-simsmall-3"
	CoreRequirement int    // Number of physical cores the task occupies while active

	ArrivalTime   int64 // Simulated time (ns) the task becomes eligible.
	StartTime     int64 // Time (ns) the first core was assigned; 0 while unset.
	DepartureTime int64 // Time (ns) the primary thread exited; 0 while unset.

	Phase TaskPhase
}

// enqueue moves the task into the queued phase. Re-queuing an already
// queued task is a no-op; the transition is idempotent.
func (t *Task) enqueue() {
	if t.Phase == PhaseWaitingToSchedule || t.Phase == PhaseQueued {
		t.Phase = PhaseQueued
	}
}

func (t Task) String() string {
	return fmt.Sprintf("Task: (ID: %d, Name: %s, Phase: %s, ArrivalTime: %d)", t.ID, t.Name, t.Phase, t.ArrivalTime)
}
