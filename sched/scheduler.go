// The admission and dispatch engine for the open system: FIFO admission,
// core mapping, thread lifecycle hooks and the periodic tick loop.

package sched

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/manycore-sim/manycore-sim/sched/trace"
)

// invariantCheckInterval is how often (in simulated ns) Periodic verifies
// the global state invariants. Checking every tick would be correct but
// slows the simulation measurably.
const invariantCheckInterval = 1_000_000

// Scheduler is the open-system workload scheduler. It admits a fixed set of
// tasks arriving over simulated time, maps each onto a contiguous subset of
// the tiled core grid, and releases the cores when the task's threads exit.
//
// All hooks (ThreadCreate, ThreadExit, Periodic, SetAffinity) run on the
// host's control thread; the scheduler never spawns goroutines and never
// blocks.
type Scheduler struct {
	// Out receives the textual simulation output ([Scheduler]: lines).
	Out io.Writer
	// Trace optionally records admission, mapping and time-jump decisions.
	Trace *trace.SimulationTrace

	host Host
	grid Grid

	tasks []Task
	cores []Core

	mapping MappingPolicy
	queue   QueuePolicy

	mappingEpoch int64
	quantum      int64
	interleaving int
	nextCore     int

	// Pinned-base bookkeeping: which thread runs on each core and how much
	// of its quantum remains.
	threadRunning []int
	quantumLeft   []int64
	lastPeriodic  int64

	metrics *Metrics
}

// NewScheduler validates the configuration against the host's core count
// and builds the scheduler with all task arrival times assigned. Every
// configuration problem is reported here, before any simulated time passes.
func NewScheduler(cfg *Config, host Host) (*Scheduler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	numCores := host.NumCores()
	grid, err := NewGrid(numCores)
	if err != nil {
		return nil, err
	}

	mask := cfg.Scheduler.Open.CoreMask
	if len(mask) == 0 {
		mask = make([]bool, numCores)
		for i := range mask {
			mask[i] = true
		}
	}
	if len(mask) != numCores {
		return nil, fmt.Errorf("core_mask has %d entries, system has %d cores", len(mask), numCores)
	}
	anyAllowed := false
	for _, allowed := range mask {
		anyAllowed = anyAllowed || allowed
	}
	if !anyAllowed {
		return nil, fmt.Errorf("core_mask disables every core")
	}

	queuePolicy, err := newQueuePolicy(cfg.Scheduler.Open.QueuePolicy)
	if err != nil {
		return nil, err
	}
	mappingPolicy, err := newMappingPolicy(cfg.Scheduler.Open.Logic, grid,
		preferredCoreOrder(cfg.Scheduler.Open.PreferredCores))
	if err != nil {
		return nil, err
	}

	names, err := cfg.TaskNames()
	if err != nil {
		return nil, err
	}
	numTasks := len(names)

	arrivals, err := GenerateArrivals(ArrivalConfig{
		Distribution:  cfg.Scheduler.Open.Distribution,
		Rate:          cfg.Scheduler.Open.ArrivalRate,
		Interval:      cfg.Scheduler.Open.ArrivalInterval,
		Seed:          cfg.Scheduler.Open.DistributionSeed,
		ExplicitTimes: cfg.Scheduler.Open.ExplicitArrivalTimes,
	}, numTasks)
	if err != nil {
		return nil, err
	}

	s := &Scheduler{
		Out:           os.Stdout,
		host:          host,
		grid:          grid,
		tasks:         make([]Task, numTasks),
		cores:         make([]Core, numCores),
		mapping:       mappingPolicy,
		queue:         queuePolicy,
		mappingEpoch:  cfg.Scheduler.Open.Epoch,
		quantum:       cfg.Scheduler.Pinned.Quantum,
		interleaving:  cfg.Scheduler.Pinned.Interleaving,
		threadRunning: make([]int, numCores),
		quantumLeft:   make([]int64, numCores),
		metrics:       NewMetrics(),
	}

	for i := range s.cores {
		s.cores[i] = Core{
			Index:            i,
			AssignedTaskID:   UnassignedTaskID,
			AssignedThreadID: InvalidThreadID,
			MaskAllowed:      mask[i],
		}
		s.threadRunning[i] = InvalidThreadID
	}

	for i := range s.cores {
		if s.cores[i].MaskAllowed {
			s.nextCore = i
			break
		}
	}

	for i, name := range names {
		requirement, err := CoreRequirement(name)
		if err != nil {
			return nil, err
		}
		s.tasks[i] = Task{
			ID:              i,
			Name:            name,
			CoreRequirement: requirement,
			ArrivalTime:     arrivals[i],
			Phase:           PhaseWaitingToSchedule,
		}
	}

	logrus.Debugf("scheduler: %d tasks on a %dx%d grid, epoch=%dns quantum=%dns",
		numTasks, grid.Rows, grid.Columns, s.mappingEpoch, s.quantum)

	return s, nil
}

// Start announces the arrival schedule and mapping policy. Separate from
// NewScheduler so tests can attach an output writer first.
func (s *Scheduler) Start() {
	for i := range s.tasks {
		s.emitf("[Scheduler]: Setting Arrival Time for Task %d (%s) to %d ns",
			i, s.tasks[i].Name, s.tasks[i].ArrivalTime)
	}
	s.emitf("[Scheduler] [Info]: Initializing mapping policy")
}

// Metrics returns the timing metrics collected so far.
func (s *Scheduler) Metrics() *Metrics {
	return s.metrics
}

// Grid returns the grid geometry.
func (s *Scheduler) Grid() Grid {
	return s.grid
}

// NumTasks returns the number of tasks in the workload.
func (s *Scheduler) NumTasks() int {
	return len(s.tasks)
}

func (s *Scheduler) emitf(format string, args ...any) {
	fmt.Fprintf(s.Out, format+"\n", args...)
}

// fatalf reports a fatal internal error and aborts the simulation.
func (s *Scheduler) fatalf(format string, args ...any) {
	s.emitf("[Scheduler][Error]: "+format, args...)
	logrus.Fatalf(format, args...)
}

// frontOfQueue returns the ID of the task at the front of the admission
// queue, or InvalidTaskID when the queue is empty.
func (s *Scheduler) frontOfQueue() int {
	return s.queue.FrontOfQueue(s.tasks)
}

// executeMappingPolicy asks the mapping policy for cores and assigns them.
// Returns false (leaving the task queued) when the policy comes up short.
func (s *Scheduler) executeMappingPolicy(taskID int, now int64) bool {
	task := &s.tasks[taskID]

	available := make([]bool, len(s.cores))
	active := make([]bool, len(s.cores))
	for i := range s.cores {
		available[i] = s.cores[i].MaskAllowed && !s.isAssignedToTask(i)
		active[i] = s.isAssignedToTask(i)
	}

	bestCores := s.mapping.Map(task.Name, task.CoreRequirement, available, active)
	if len(bestCores) < task.CoreRequirement {
		s.emitf("[Scheduler]: Policy returned too few cores, mapping failed.")
		return false
	}

	for _, core := range bestCores {
		s.emitf("[Scheduler]: Assigning Core %d to Task %d", core, taskID)
		s.cores[core].AssignedTaskID = taskID
	}

	if s.Trace.Enabled() {
		s.Trace.RecordMapping(trace.MappingRecord{TaskID: taskID, Clock: now, Cores: bestCores})
	}
	return true
}

// Schedule attempts to admit the task. The checks run in a fixed order:
// readiness, queue position, capacity, mapping. A task that passed the
// readiness check stays queued on any later failure and is retried on the
// next mapping epoch or thread exit.
func (s *Scheduler) Schedule(taskID int, isInitialCall bool, now int64) bool {
	s.emitf("[Scheduler]: Trying to schedule Task %d at Time %s", taskID, formatTime(now))
	task := &s.tasks[taskID]

	if task.ArrivalTime > now {
		s.emitf("[Scheduler]: Task %d is not ready for execution.", taskID)
		s.traceAdmission(taskID, now, false, "not ready")
		return false
	}
	s.emitf("[Scheduler]: Task %d put into execution queue.", taskID)
	task.enqueue()

	if s.frontOfQueue() != taskID {
		s.emitf("[Scheduler]: Task %d is not in front of the queue.", taskID)
		s.traceAdmission(taskID, now, false, "not at queue front")
		return false
	}

	if free := s.NumberOfFreeCores(); free < task.CoreRequirement {
		s.emitf("[Scheduler]: Not Enough Free Cores (%d) to Schedule the Task %d with cores requirement %d",
			free, taskID, task.CoreRequirement)
		s.traceAdmission(taskID, now, false, "insufficient capacity")
		return false
	}

	if !s.executeMappingPolicy(taskID, now) {
		s.traceAdmission(taskID, now, false, "mapping failed")
		return false
	}

	if !isInitialCall {
		s.emitf("[Scheduler]: Waking Task %d at core %d", taskID, s.SetAffinity(taskID))
	}
	task.StartTime = now
	task.Phase = PhaseActive
	s.traceAdmission(taskID, now, true, "")
	return true
}

func (s *Scheduler) traceAdmission(taskID int, now int64, admitted bool, reason string) {
	if s.Trace.Enabled() {
		s.Trace.RecordAdmission(trace.AdmissionRecord{
			TaskID: taskID, Clock: now, Admitted: admitted, Reason: reason,
		})
	}
}

// SetAffinity attaches the thread to the first core assigned to its task
// that has no thread yet, and pushes the matching single-core affinity mask
// to the host. With no such core it pushes the park mask instead. This is
// the only place a core's AssignedThreadID is set.
func (s *Scheduler) SetAffinity(threadID int) int {
	appID := s.host.ThreadApp(threadID)

	coreFound := InvalidCoreID
	for i := range s.cores {
		if s.cores[i].AssignedTaskID == appID && s.cores[i].AssignedThreadID == InvalidThreadID {
			coreFound = i
			break
		}
	}

	if coreFound == InvalidCoreID {
		s.emitf("[Scheduler]: Setting Affinity for Thread %d from Task %d to Invalid Core ID", threadID, appID)
		s.host.SetThreadAffinity(InvalidThreadID, threadID, SingleCoreSet(len(s.cores), InvalidCoreID))
	} else {
		s.emitf("[Scheduler]: Setting Affinity for Thread %d from Task %d to Core %d", threadID, appID, coreFound)
		s.host.SetThreadAffinity(InvalidThreadID, threadID, SingleCoreSet(len(s.cores), coreFound))
		s.cores[coreFound].AssignedThreadID = threadID
	}
	return coreFound
}

// ThreadCreate is called by the host when a new thread appears. Threads
// 0..N-1 are the primary threads of the tasks, created together at
// simulation start; higher IDs are worker threads of already-active tasks.
// Returns the core the thread starts on, or InvalidCoreID if it must sleep.
func (s *Scheduler) ThreadCreate(threadID int) int {
	appID := s.host.ThreadApp(threadID)
	now := s.host.Now()

	s.emitf("[Scheduler]: Trying to map Thread %d from Task %d at Time %s", threadID, appID, formatTime(now))

	if threadID == 0 {
		if !s.Schedule(0, true, now) {
			s.fatalf("Task 0 must be mapped for simulation to work.")
		}
	} else if threadID > 0 && threadID < len(s.tasks) {
		// Admission failure is fine here: the task stays waiting (not yet
		// arrived) or queued, and is retried by Periodic or ThreadExit.
		s.Schedule(threadID, true, now)
	}

	s.threadInitialAffinity(threadID)
	s.SetAffinity(threadID)

	if core := s.findFreeCoreForThread(threadID); core != InvalidCoreID {
		s.threadRunning[core] = threadID
		s.quantumLeft[core] = s.quantum
		return core
	}

	if threadID >= len(s.tasks) {
		// Mapping reserved a core for every worker thread of an active
		// task; a worker without a core means the state is corrupt.
		s.fatalf("A non-initial Thread %d from Task %d failed to get a core.", threadID, appID)
	}

	s.emitf("[Scheduler]: Putting Thread %d from Task %d to sleep.", threadID, appID)
	return InvalidCoreID
}

// findFreeCoreForThread returns the first core attached to the thread with
// nothing running on it.
func (s *Scheduler) findFreeCoreForThread(threadID int) int {
	for i := range s.cores {
		if s.cores[i].AssignedThreadID == threadID && s.threadRunning[i] == InvalidThreadID {
			return i
		}
	}
	return InvalidCoreID
}

// threadInitialAffinity pushes a provisional affinity hint for a thread that
// has none yet, chosen by the interleaved free-core walk. SetAffinity
// overrides it right afterwards once mapping has reserved a core.
func (s *Scheduler) threadInitialAffinity(threadID int) {
	core := s.freeCore(s.nextCore)
	s.nextCore = s.nextCoreAfter(core)
	s.host.SetThreadAffinity(InvalidThreadID, threadID, SingleCoreSet(len(s.cores), core))
}

// nextCoreAfter advances through the cores with the configured interleaving
// stride, skipping masked-out cores.
func (s *Scheduler) nextCoreAfter(coreID int) int {
	for {
		coreID += s.interleaving
		if coreID >= len(s.cores) {
			coreID %= len(s.cores)
			coreID++
			coreID %= s.interleaving
		}
		if s.cores[coreID].MaskAllowed {
			return coreID
		}
	}
}

// freeCore returns the first idle core in interleaved order starting at
// coreFirst, or coreFirst itself when everything is busy.
func (s *Scheduler) freeCore(coreFirst int) int {
	coreNext := coreFirst
	for {
		if s.threadRunning[coreNext] == InvalidThreadID {
			return coreNext
		}
		coreNext = s.nextCoreAfter(coreNext)
		if coreNext == coreFirst {
			return coreFirst
		}
	}
}

// NotifyRescheduled records the outcome of a host reschedule: which thread
// now runs on the core, with a fresh quantum. The host calls this after
// every Reschedule it acts on; InvalidThreadID leaves the core idle.
func (s *Scheduler) NotifyRescheduled(coreID, threadID int) {
	s.threadRunning[coreID] = threadID
	if threadID != InvalidThreadID {
		s.quantumLeft[coreID] = s.quantum
	}
}

// fetchTasksIntoQueue moves every task whose arrival time has passed into
// the admission queue.
func (s *Scheduler) fetchTasksIntoQueue(now int64) {
	for i := range s.tasks {
		if s.tasks[i].Phase == PhaseWaitingToSchedule && s.tasks[i].ArrivalTime <= now {
			s.emitf("[Scheduler]: Task %d put into execution queue.", i)
			s.tasks[i].Phase = PhaseQueued
		}
	}
}

// ThreadExit is called by the host when a thread exits. Worker exits
// release their core; the primary thread's exit completes the task,
// releases all of its cores and may trigger the empty-system time jump.
func (s *Scheduler) ThreadExit(threadID int, now int64) {
	// If the thread was running, hand its core back to the host first.
	for i := range s.cores {
		if s.threadRunning[i] == threadID {
			s.threadRunning[i] = InvalidThreadID
			s.host.Reschedule(i, now, false)
		}
	}

	appID := s.host.ThreadApp(threadID)
	s.emitf("[Scheduler]: Thread %d from Task %d Exiting at Time %s", threadID, appID, formatTime(now))

	for i := range s.cores {
		if s.cores[i].AssignedThreadID == threadID {
			s.cores[i].AssignedThreadID = InvalidThreadID
			s.emitf("[Scheduler]: Releasing Core %d from Thread %d", i, threadID)
			s.host.SetThreadAffinity(InvalidThreadID, threadID, SingleCoreSet(len(s.cores), InvalidCoreID))
		}
	}

	if threadID < len(s.tasks) {
		s.emitf("[Scheduler]: Task %d Finished.", appID)

		for i := range s.cores {
			if s.cores[i].AssignedTaskID == appID {
				s.cores[i].AssignedTaskID = UnassignedTaskID
				s.emitf("[Scheduler]: Releasing Core %d from Task %d", i, appID)
			}
		}

		task := &s.tasks[appID]
		task.DepartureTime = now
		task.Phase = PhaseCompleted

		timing := s.metrics.RecordCompletion(*task)
		s.emitf("[Scheduler][Result]: Task %d (Response/Service/Wait) Time (ns) :\t%d\t%d\t%d",
			appID, timing.Response, timing.Service, timing.Wait)
	}

	if s.NumberOfFreeCores() == len(s.cores) &&
		(s.NumberOfTasksWaitingToSchedule() != 0 || s.NumberOfTasksInQueue() != 0) {
		// Without prefetching the host would deadlock: simulated time only
		// advances while at least one thread runs.
		s.emitf("[Scheduler]: System Going Empty ... Prefetching Tasks")

		if s.NumberOfTasksInQueue() != 0 {
			s.emitf("[Scheduler]: Prefetching Task from Queue")
			s.Schedule(s.frontOfQueue(), false, now)
		} else {
			s.timeJump(now)
		}
	}

	if s.NumberOfTasksCompleted() == len(s.tasks) {
		s.emitf("[Scheduler]: All tasks finished executing.")
		s.emitf("[Scheduler][Result]: Average Response Time (ns) :\t%d", s.metrics.AverageResponseTime())
	}
}

// timeJump advances the arrival clock of every not-yet-arrived task so the
// earliest of them becomes eligible now. All waiting arrivals shift by the
// same amount, so their relative order is preserved and response times are
// unaffected.
func (s *Scheduler) timeJump(now int64) {
	var nextArrival int64
	for i := range s.tasks {
		if s.tasks[i].Phase != PhaseWaitingToSchedule {
			continue
		}
		if nextArrival == 0 || s.tasks[i].ArrivalTime < nextArrival {
			nextArrival = s.tasks[i].ArrivalTime
		}
	}
	if nextArrival == 0 {
		s.fatalf("INTERNAL ERROR: nextArrivalTime == 0")
	}

	jump := nextArrival - now
	s.emitf("[Scheduler]: Readjusting Arrival Time by %d ns", jump)

	adjusted := 0
	for i := range s.tasks {
		if s.tasks[i].Phase == PhaseWaitingToSchedule {
			s.tasks[i].ArrivalTime -= jump
			adjusted++
			s.emitf("[Scheduler]: New Arrival Time from Task %d set at %d ns", i, s.tasks[i].ArrivalTime)
		}
	}

	if s.Trace.Enabled() {
		s.Trace.RecordTimeJump(trace.TimeJumpRecord{Clock: now, Jump: jump, TasksAdjusted: adjusted})
	}

	s.fetchTasksIntoQueue(now)
	s.Schedule(s.frontOfQueue(), false, now)
}

// Periodic is invoked by the host at its fixed tick interval. It verifies
// the global invariants every millisecond of simulated time, drains the
// admission queue every mapping epoch, and accounts per-core quanta every
// tick.
func (s *Scheduler) Periodic(now int64) {
	if now%invariantCheckInterval == 0 {
		s.emitf("[Scheduler]: Time %s [Active Tasks =  %d | Completed Tasks = %d | Queued Tasks = %d | Non-Queued Tasks  = %d | Free Cores = %d | Active Tasks Requirements = %d ]",
			formatTime(now), s.NumberOfActiveTasks(), s.NumberOfTasksCompleted(),
			s.NumberOfTasksInQueue(), s.NumberOfTasksWaitingToSchedule(),
			s.NumberOfFreeCores(), s.TotalCoreRequirementOfActiveTasks())

		if len(s.cores)-s.TotalCoreRequirementOfActiveTasks() != s.NumberOfFreeCores() {
			s.fatalf("Number of Free Cores + Number of Active Tasks Requirements != Number Of Cores.")
		}
		if s.NumberOfActiveTasks()+s.NumberOfTasksCompleted()+
			s.NumberOfTasksInQueue()+s.NumberOfTasksWaitingToSchedule() != len(s.tasks) {
			s.fatalf("Task State Does Not Match.")
		}
	}

	if now%s.mappingEpoch == 0 {
		s.emitf("[Scheduler]: Scheduler Invoked at %s", formatTime(now))

		s.fetchTasksIntoQueue(now)
		for s.NumberOfTasksInQueue() != 0 {
			if !s.Schedule(s.frontOfQueue(), false, now) {
				break // can't map the task at the front of the queue
			}
		}

		s.emitf("[Scheduler]: Current mapping:")
		s.emitOccupancyMap()
	}

	delta := now - s.lastPeriodic
	for core := range s.cores {
		if delta > s.quantumLeft[core] || s.threadRunning[core] == InvalidThreadID {
			s.host.Reschedule(core, now, true)
		} else {
			s.quantumLeft[core] -= delta
		}
	}
	s.lastPeriodic = now
}

// emitOccupancyMap prints the grid row-major: "." for a free core, *id* for
// a running task, -id- for attached-but-not-running, (id) for assigned with
// no thread yet.
func (s *Scheduler) emitOccupancyMap() {
	for y := 0; y < s.grid.Rows; y++ {
		var row strings.Builder
		for x := 0; x < s.grid.Columns; x++ {
			if x > 0 {
				row.WriteString(" ")
			}
			coreID := y*s.grid.Columns + x
			if !s.isAssignedToTask(coreID) {
				row.WriteString("  . ")
				continue
			}
			taskID := s.cores[coreID].AssignedTaskID
			if taskID < 10 {
				row.WriteString(" ")
			}
			marker1, marker2 := "(", ")"
			if s.isAssignedToThread(coreID) {
				if s.host.ThreadState(s.cores[coreID].AssignedThreadID) == ThreadRunning {
					marker1, marker2 = "*", "*"
				} else {
					marker1, marker2 = "-", "-"
				}
			}
			fmt.Fprintf(&row, "%s%d%s", marker1, taskID, marker2)
		}
		s.emitf("%s", row.String())
	}
}

// formatLong renders a number with dots as thousands separators.
func formatLong(l int64) string {
	if l < 1000 {
		return strconv.FormatInt(l, 10)
	}
	return formatLong(l/1000) + "." + fmt.Sprintf("%03d", l%1000)
}

// formatTime renders a nanosecond timestamp, e.g. "1.234.567 ns".
func formatTime(ns int64) string {
	return formatLong(ns) + " ns"
}
