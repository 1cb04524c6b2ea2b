package sched

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manycore-sim/manycore-sim/sched/trace"
)

func newDriverScheduler(t *testing.T, d *Driver, mutate func(*Config)) *Scheduler {
	t.Helper()
	cfg, err := ParseConfig([]byte(validConfigYAML))
	require.NoError(t, err)
	if mutate != nil {
		mutate(cfg)
	}
	s, err := NewScheduler(cfg, d)
	require.NoError(t, err)
	s.Out = io.Discard
	d.Attach(s)
	return s
}

// End to end: two tasks on four cores, both complete and the metrics carry
// one timing per task.
func TestDriver_RunToCompletion(t *testing.T) {
	d := NewDriver(4, 100, 5000, 1_000_000_000)
	s := newDriverScheduler(t, d, func(cfg *Config) {
		cfg.Scheduler.Open.Epoch = 1000
	})

	err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 2, s.NumberOfTasksCompleted())
	assert.Equal(t, 0, s.NumberOfActiveTasks())
	assert.Equal(t, len(s.Cores()), s.NumberOfFreeCores(), "all cores released at the end")

	metrics := s.Metrics()
	require.Len(t, metrics.Timings, 2)
	assert.Positive(t, metrics.AverageResponseTime())
	for _, timing := range metrics.Timings {
		assert.GreaterOrEqual(t, timing.Service, int64(5000), "service covers the configured run time")
		assert.GreaterOrEqual(t, timing.Wait, int64(0))
	}
}

// A queued task takes over the system once capacity frees up, driven purely
// by the event loop.
func TestDriver_CapacityHandover(t *testing.T) {
	d := NewDriver(2, 100, 5000, 1_000_000_000)
	s := newDriverScheduler(t, d, func(cfg *Config) {
		cfg.Scheduler.Open.ArrivalRate = 2 // both tasks arrive at time 0
		cfg.Scheduler.Open.PreferredCores = nil
	})

	err := d.Run()

	require.NoError(t, err)
	tasks := s.Tasks()
	assert.Equal(t, PhaseCompleted, tasks[0].Phase)
	assert.Equal(t, PhaseCompleted, tasks[1].Phase)
	assert.GreaterOrEqual(t, tasks[1].StartTime, tasks[0].DepartureTime,
		"task 1 cannot start before task 0 releases the cores")
}

// A distant second arrival exercises the time jump under the driver: the
// run completes far sooner than the configured arrival time.
func TestDriver_TimeJumpAvoidsDeadlock(t *testing.T) {
	d := NewDriver(2, 100, 5000, 1_000_000_000)
	s := newDriverScheduler(t, d, func(cfg *Config) {
		cfg.Scheduler.Open.Distribution = DistributionExplicit
		cfg.Scheduler.Open.ExplicitArrivalTimes = []int64{0, 500_000_000}
		cfg.Scheduler.Open.PreferredCores = nil
	})
	s.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})

	err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 2, s.NumberOfTasksCompleted())
	assert.Less(t, s.Tasks()[1].DepartureTime, int64(500_000_000),
		"the jump pulled the second arrival into the present")
	require.Len(t, s.Trace.TimeJumps, 1)
	assert.Positive(t, s.Trace.TimeJumps[0].Jump)
}

// Worker threads spawn for multi-core tasks and all exit cleanly.
func TestDriver_WorkerThreads(t *testing.T) {
	d := NewDriver(4, 100, 5000, 1_000_000_000)
	var out bytes.Buffer
	s := newDriverScheduler(t, d, func(cfg *Config) {
		cfg.TraceInput.NumApps = 1
		cfg.TraceInput.Benchmarks = "parsec-x264-simsmall-3" // needs 4 cores
	})
	s.Out = &out

	err := d.Run()

	require.NoError(t, err)
	assert.Equal(t, 1, s.NumberOfTasksCompleted())
	// One primary plus three workers were attached over the run.
	assert.Contains(t, out.String(), "Setting Affinity for Thread 1 from Task 0")
	assert.Contains(t, out.String(), "Setting Affinity for Thread 3 from Task 0")
}

// The horizon cuts off a run that cannot finish.
func TestDriver_HorizonReached(t *testing.T) {
	d := NewDriver(4, 100, 5000, 300) // horizon before the first exit at 5000
	newDriverScheduler(t, d, nil)

	err := d.Run()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "horizon")
}
