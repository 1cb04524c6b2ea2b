package sched

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

// affinityPush records one SetThreadAffinity call seen by the mock host.
type affinityPush struct {
	threadID int
	mask     *CoreSet
}

// mockHost is a minimal Host for unit tests: a settable clock, thread→app
// overrides for worker threads, and recordings of every affinity push and
// reschedule request.
type mockHost struct {
	numCores    int
	clock       int64
	apps        map[int]int
	states      map[int]ThreadState
	pushes      []affinityPush
	reschedules []int
}

func newMockHost(numCores int) *mockHost {
	return &mockHost{
		numCores: numCores,
		apps:     make(map[int]int),
		states:   make(map[int]ThreadState),
	}
}

func (h *mockHost) NumCores() int { return h.numCores }
func (h *mockHost) Now() int64    { return h.clock }

func (h *mockHost) ThreadApp(threadID int) int {
	if app, ok := h.apps[threadID]; ok {
		return app
	}
	return threadID // primary threads carry their task's ID
}

func (h *mockHost) ThreadState(threadID int) ThreadState {
	if state, ok := h.states[threadID]; ok {
		return state
	}
	return ThreadRunning
}

func (h *mockHost) SetThreadAffinity(_, threadID int, mask *CoreSet) {
	h.pushes = append(h.pushes, affinityPush{threadID: threadID, mask: mask})
}

func (h *mockHost) Reschedule(coreID int, _ int64, _ bool) {
	h.reschedules = append(h.reschedules, coreID)
}

// lastPushFor returns the most recent affinity mask pushed for the thread.
func (h *mockHost) lastPushFor(threadID int) *CoreSet {
	for i := len(h.pushes) - 1; i >= 0; i-- {
		if h.pushes[i].threadID == threadID {
			return h.pushes[i].mask
		}
	}
	return nil
}

// newTestScheduler builds a scheduler over the mock host from the valid
// base config, with output discarded.
func newTestScheduler(t *testing.T, host *mockHost, mutate func(*Config)) *Scheduler {
	t.Helper()
	cfg, err := ParseConfig([]byte(validConfigYAML))
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewScheduler(cfg, host)
	require.NoError(t, err)
	s.Out = io.Discard
	return s
}

// assertInvariants checks the capacity and phase-partition invariants that
// must hold after every public hook returns.
func assertInvariants(t *testing.T, s *Scheduler) {
	t.Helper()

	// Capacity: free cores + active core requirements = all cores.
	free := s.NumberOfFreeCores()
	required := s.TotalCoreRequirementOfActiveTasks()
	if free+required != len(s.Cores()) {
		t.Fatalf("capacity invariant violated: %d free + %d required != %d cores",
			free, required, len(s.Cores()))
	}

	// Phase partition: every task is in exactly one phase.
	total := s.NumberOfActiveTasks() + s.NumberOfTasksCompleted() +
		s.NumberOfTasksInQueue() + s.NumberOfTasksWaitingToSchedule()
	if total != s.NumTasks() {
		t.Fatalf("phase partition invariant violated: phases sum to %d, have %d tasks",
			total, s.NumTasks())
	}

	// No over-subscription: a thread is attached to at most one core.
	seen := make(map[int]int)
	for _, core := range s.Cores() {
		if core.AssignedThreadID == InvalidThreadID {
			continue
		}
		if prev, ok := seen[core.AssignedThreadID]; ok {
			t.Fatalf("thread %d attached to cores %d and %d", core.AssignedThreadID, prev, core.Index)
		}
		seen[core.AssignedThreadID] = core.Index
	}
}
