// Per-task and aggregate timing metrics emitted on task completion.

package sched

// TaskTiming holds the timing results of one completed task.
//
// Response time is measured from the task's arrival time as adjusted by the
// empty-system time jump, not from the originally configured arrival. The
// jump shifts all not-yet-arrived tasks by the same amount, so relative
// results are unaffected.
type TaskTiming struct {
	TaskID   int
	Response int64 // departure - arrival, ns
	Service  int64 // departure - start, ns
	Wait     int64 // start - arrival, ns
}

// Metrics aggregates per-task timings for final reporting.
type Metrics struct {
	Timings []TaskTiming
}

// NewMetrics creates an empty Metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{Timings: make([]TaskTiming, 0)}
}

// RecordCompletion computes and stores the timing of a completed task.
func (m *Metrics) RecordCompletion(task Task) TaskTiming {
	timing := TaskTiming{
		TaskID:   task.ID,
		Response: task.DepartureTime - task.ArrivalTime,
		Service:  task.DepartureTime - task.StartTime,
		Wait:     task.StartTime - task.ArrivalTime,
	}
	m.Timings = append(m.Timings, timing)
	return timing
}

// AverageResponseTime returns the mean response time in nanoseconds over
// all recorded tasks, or 0 when nothing completed.
func (m *Metrics) AverageResponseTime() int64 {
	if len(m.Timings) == 0 {
		return 0
	}
	var total int64
	for _, t := range m.Timings {
		total += t.Response
	}
	return total / int64(len(m.Timings))
}
