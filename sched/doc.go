// Package sched implements the open-system workload scheduler for a tiled
// many-core simulator.
//
// # Reading Guide
//
// Start with these three files to understand the scheduling kernel:
//   - task.go: Task lifecycle (waiting → queued → active → completed) and phase machine
//   - core.go: Core records and the rectangular grid geometry
//   - scheduler.go: Admission (Schedule), thread hooks (ThreadCreate/ThreadExit),
//     the empty-system time jump, and the periodic tick loop
//
// # Architecture
//
// The scheduler owns the task and core records and mutates them only inside
// host hooks; the host owns threads, time and the affinity mechanism and is
// reached through the Host interface (host.go). Everything runs on the
// host's control thread: no goroutines, no locks, no blocking.
//
// Sub-packages:
//   - sched/trace: decision-trace recording (pure data, no sched dependency)
//
// # Key Interfaces
//
// The extension points are small interfaces dispatched by configured name:
//   - MappingPolicy: choose cores for a task about to be admitted (first_unused)
//   - QueuePolicy: pick the task admitted next (FIFO)
//   - Host: the simulator capabilities the scheduler consumes; Driver
//     (driver.go) is the in-process implementation used by the CLI and tests
package sched
