// An in-process discrete-event host. The Driver plays the simulator's role:
// it owns the clock and the threads, creates one primary thread per task at
// time zero plus the worker threads of each admitted task, delivers periodic
// ticks, and retires threads after a fixed service time. It exists so the
// scheduler can be exercised end to end without the real simulator.

package sched

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"
)

// driverEvent is one scheduled occurrence in the driver's event loop.
type driverEvent interface {
	Timestamp() int64
	Execute(d *Driver)
}

// eventQueue implements heap.Interface and orders events by timestamp.
type eventQueue []driverEvent

func (eq eventQueue) Len() int           { return len(eq) }
func (eq eventQueue) Less(i, j int) bool { return eq[i].Timestamp() < eq[j].Timestamp() }
func (eq eventQueue) Swap(i, j int)      { eq[i], eq[j] = eq[j], eq[i] }

func (eq *eventQueue) Push(x any) {
	*eq = append(*eq, x.(driverEvent))
}

func (eq *eventQueue) Pop() any {
	old := *eq
	n := len(old)
	item := old[n-1]
	*eq = old[0 : n-1]
	return item
}

// threadExitEvent retires a thread at its scheduled completion time.
type threadExitEvent struct {
	time     int64
	threadID int
}

func (e *threadExitEvent) Timestamp() int64 { return e.time }

func (e *threadExitEvent) Execute(d *Driver) {
	d.retireThread(e.threadID)
}

// spawnWorkersEvent creates the worker threads of a task that just started.
// Spawning is deferred through the event queue so thread creation never
// happens inside another scheduler hook.
type spawnWorkersEvent struct {
	time  int64
	appID int
}

func (e *spawnWorkersEvent) Timestamp() int64 { return e.time }

func (e *spawnWorkersEvent) Execute(d *Driver) {
	d.spawnWorkers(e.appID)
}

// periodicEvent delivers one scheduler tick and re-arms itself.
type periodicEvent struct {
	time int64
}

func (e *periodicEvent) Timestamp() int64 { return e.time }

func (e *periodicEvent) Execute(d *Driver) {
	d.sched.Periodic(e.time)
	if !d.finished() {
		d.push(&periodicEvent{time: e.time + d.tick})
	}
}

type driverThreadState string

const (
	threadCreating driverThreadState = "creating"
	threadRunning  driverThreadState = "running"
	threadSleeping driverThreadState = "sleeping"
	threadExited   driverThreadState = "exited"
)

type driverThread struct {
	id       int
	app      int
	state    driverThreadState
	core     int      // core the thread runs on, InvalidCoreID otherwise
	affinity *CoreSet // last mask pushed by the scheduler
}

// Driver is the in-process Host implementation.
type Driver struct {
	sched *Scheduler

	numCores    int
	tick        int64 // periodic interval, ns
	serviceTime int64 // time a task's threads run before exiting, ns
	horizon     int64 // hard stop for the event loop, ns

	clock    int64
	events   eventQueue
	threads  []*driverThread
	threadOn []int // per core: driver-side view of the running thread
}

// NewDriver creates a driver host for a system of numCores cores. Attach a
// scheduler with Attach before calling Run.
func NewDriver(numCores int, tick, serviceTime, horizon int64) *Driver {
	d := &Driver{
		numCores:    numCores,
		tick:        tick,
		serviceTime: serviceTime,
		horizon:     horizon,
		events:      make(eventQueue, 0),
		threadOn:    make([]int, numCores),
	}
	for i := range d.threadOn {
		d.threadOn[i] = InvalidThreadID
	}
	return d
}

// Attach wires the scheduler the driver will drive.
func (d *Driver) Attach(s *Scheduler) {
	d.sched = s
}

// === Host interface ===

func (d *Driver) NumCores() int {
	return d.numCores
}

func (d *Driver) Now() int64 {
	return d.clock
}

func (d *Driver) ThreadApp(threadID int) int {
	return d.thread(threadID).app
}

func (d *Driver) ThreadState(threadID int) ThreadState {
	switch d.thread(threadID).state {
	case threadRunning:
		return ThreadRunning
	case threadSleeping:
		return ThreadAsleep
	default:
		return ThreadStalled
	}
}

// SetThreadAffinity records the pushed mask. A valid single-core mask for a
// sleeping thread wakes it there, mirroring the simulator's behavior when
// the scheduler re-pins an admitted task's primary thread.
func (d *Driver) SetThreadAffinity(_, threadID int, mask *CoreSet) {
	t := d.thread(threadID)
	t.affinity = mask

	if t.state != threadSleeping || mask.Invalid() || mask.Empty() {
		return
	}
	for core := 0; core < d.numCores; core++ {
		if mask.Has(core) {
			d.wakeThread(t, core)
			return
		}
	}
}

// Reschedule re-runs the driver's per-core dispatch: the thread pinned to
// the core keeps it with a fresh quantum; otherwise the core goes idle.
func (d *Driver) Reschedule(coreID int, _ int64, _ bool) {
	threadID := d.threadOn[coreID]
	if threadID != InvalidThreadID && d.threads[threadID].state == threadRunning {
		d.sched.NotifyRescheduled(coreID, threadID)
	} else {
		d.threadOn[coreID] = InvalidThreadID
		d.sched.NotifyRescheduled(coreID, InvalidThreadID)
	}
}

// === Event loop ===

// Run executes the simulation: primary thread creation at time zero, then
// the event loop until every task completed or the horizon is reached.
// Returns an error when the horizon cut the run short.
func (d *Driver) Run() error {
	if d.sched == nil {
		return fmt.Errorf("driver has no scheduler attached")
	}

	numTasks := d.sched.NumTasks()
	for taskID := 0; taskID < numTasks; taskID++ {
		d.createThread(taskID, taskID)
	}

	d.push(&periodicEvent{time: d.tick})

	for d.events.Len() > 0 {
		event := heap.Pop(&d.events).(driverEvent)
		if event.Timestamp() > d.horizon {
			return fmt.Errorf("simulation horizon %d ns reached with %d of %d tasks completed",
				d.horizon, d.sched.NumberOfTasksCompleted(), numTasks)
		}
		d.clock = event.Timestamp()
		event.Execute(d)
		if d.finished() {
			break
		}
	}

	if !d.finished() {
		return fmt.Errorf("event queue drained with %d of %d tasks completed",
			d.sched.NumberOfTasksCompleted(), numTasks)
	}
	logrus.Debugf("driver: all %d tasks completed at %d ns", numTasks, d.clock)
	return nil
}

func (d *Driver) finished() bool {
	return d.sched.NumberOfTasksCompleted() == d.sched.NumTasks()
}

func (d *Driver) push(event driverEvent) {
	heap.Push(&d.events, event)
}

// thread returns the record for threadID, growing the table when the
// scheduler pushes affinity for a thread the driver has not created yet.
func (d *Driver) thread(threadID int) *driverThread {
	for threadID >= len(d.threads) {
		d.threads = append(d.threads, &driverThread{
			id:    len(d.threads),
			app:   len(d.threads), // primary threads carry their task's ID
			state: threadCreating,
			core:  InvalidCoreID,
		})
	}
	return d.threads[threadID]
}

// createThread introduces a new thread to the scheduler and starts it on
// the returned core, or puts it to sleep.
func (d *Driver) createThread(threadID, appID int) {
	t := d.thread(threadID)
	t.app = appID
	t.state = threadCreating

	core := d.sched.ThreadCreate(threadID)
	if core == InvalidCoreID {
		t.state = threadSleeping
		return
	}
	d.startThread(t, core)
}

// startThread marks the thread running and schedules its exit. The primary
// thread of a task also spawns the task's worker threads and exits last, so
// the task's cores are all released by the time it completes.
func (d *Driver) startThread(t *driverThread, core int) {
	t.state = threadRunning
	t.core = core
	d.threadOn[core] = t.id

	// Workers exit one nanosecond before the primary, so the task's
	// completion releases every core it held.
	exitTime := d.clock + d.serviceTime
	if t.id == t.app && t.id < d.sched.NumTasks() {
		d.push(&threadExitEvent{time: exitTime + 1, threadID: t.id})
		d.push(&spawnWorkersEvent{time: d.clock, appID: t.app})
	} else {
		d.push(&threadExitEvent{time: exitTime, threadID: t.id})
	}
}

// spawnWorkers creates the remaining worker threads of a newly started
// task, one per reserved core beyond the primary's.
func (d *Driver) spawnWorkers(appID int) {
	requirement := d.sched.Tasks()[appID].CoreRequirement
	for i := 1; i < requirement; i++ {
		workerID := len(d.threads)
		d.thread(workerID) // allocate
		d.createThread(workerID, appID)
	}
}

// wakeThread resumes a sleeping thread on the given core.
func (d *Driver) wakeThread(t *driverThread, core int) {
	logrus.Debugf("driver: waking thread %d on core %d at %d ns", t.id, core, d.clock)
	d.sched.NotifyRescheduled(core, t.id)
	d.startThread(t, core)
}

// retireThread exits a thread and notifies the scheduler.
func (d *Driver) retireThread(threadID int) {
	t := d.threads[threadID]
	if t.state == threadExited {
		return
	}
	t.state = threadExited
	if t.core != InvalidCoreID && d.threadOn[t.core] == threadID {
		d.threadOn[t.core] = InvalidThreadID
	}
	t.core = InvalidCoreID
	d.sched.ThreadExit(threadID, d.clock)
}
