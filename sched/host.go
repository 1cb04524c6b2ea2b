// The Host capability interface: everything the scheduler needs from the
// surrounding simulator. The scheduler owns task and core records; the host
// owns threads, per-core time and the affinity mechanism.

package sched

import (
	"fmt"
	"strings"
)

// ThreadState reports whether a thread is currently executing on its core.
type ThreadState string

const (
	ThreadRunning ThreadState = "running"
	ThreadStalled ThreadState = "stalled"
	ThreadAsleep  ThreadState = "asleep"
)

// Host is the narrow interface onto the simulator consumed by the scheduler.
// All calls into the scheduler happen on the host's control thread, so
// implementations need no locking.
type Host interface {
	// NumCores returns the number of application cores in the system.
	NumCores() int
	// Now returns the current global simulated time in nanoseconds.
	Now() int64
	// ThreadApp returns the ID of the task (application) owning the thread.
	// Primary threads carry the ID of their task.
	ThreadApp(threadID int) int
	// ThreadState reports the running state of a thread.
	ThreadState(threadID int) ThreadState
	// SetThreadAffinity pushes an affinity mask for a thread. A mask holding
	// only the invalid core parks the thread until a new mask arrives.
	SetThreadAffinity(callerThreadID, threadID int, mask *CoreSet)
	// Reschedule asks the host to re-run its per-core scheduling for the
	// given core. periodic distinguishes quantum expiry from event-driven
	// rescheduling.
	Reschedule(coreID int, now int64, periodic bool)
}

// CoreSet is a fixed-size bitmask of core indices, the scheduler-side shape
// of a POSIX CPU set. Adding InvalidCoreID produces the park mask used to
// take a thread off every core.
type CoreSet struct {
	bits    []uint64
	invalid bool
}

// NewCoreSet creates an empty set able to hold numCores cores.
func NewCoreSet(numCores int) *CoreSet {
	return &CoreSet{bits: make([]uint64, (numCores+63)/64)}
}

// SingleCoreSet creates a set holding exactly the given core.
func SingleCoreSet(numCores, core int) *CoreSet {
	s := NewCoreSet(numCores)
	s.Add(core)
	return s
}

// Add inserts a core into the set. InvalidCoreID marks the set invalid.
func (s *CoreSet) Add(core int) {
	if core == InvalidCoreID {
		s.invalid = true
		return
	}
	s.bits[core/64] |= 1 << uint(core%64)
}

// Has reports whether the core is in the set.
func (s *CoreSet) Has(core int) bool {
	if core == InvalidCoreID {
		return s.invalid
	}
	word := core / 64
	if word >= len(s.bits) {
		return false
	}
	return s.bits[word]&(1<<uint(core%64)) != 0
}

// Invalid reports whether the set carries the invalid-core sentinel.
func (s *CoreSet) Invalid() bool {
	return s.invalid
}

// Empty reports whether no real core is in the set.
func (s *CoreSet) Empty() bool {
	for _, w := range s.bits {
		if w != 0 {
			return false
		}
	}
	return true
}

func (s *CoreSet) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	first := true
	for i := 0; i < len(s.bits)*64; i++ {
		if s.Has(i) {
			if !first {
				sb.WriteString(" ")
			}
			fmt.Fprintf(&sb, "%d", i)
			first = false
		}
	}
	if s.invalid {
		if !first {
			sb.WriteString(" ")
		}
		sb.WriteString("invalid")
	}
	sb.WriteString("}")
	return sb.String()
}
