// Derived counts over the task and core records. All are plain scans; the
// cardinalities are small and bounded, so no caching.

package sched

// NumberOfFreeCores returns the number of cores with no task assigned.
func (s *Scheduler) NumberOfFreeCores() int {
	free := 0
	for i := range s.cores {
		if s.cores[i].AssignedTaskID == UnassignedTaskID {
			free++
		}
	}
	return free
}

// NumberOfTasksInQueue returns the number of tasks in the queued phase.
func (s *Scheduler) NumberOfTasksInQueue() int {
	return s.countPhase(PhaseQueued)
}

// NumberOfTasksWaitingToSchedule returns the number of tasks not yet
// entered into the queue.
func (s *Scheduler) NumberOfTasksWaitingToSchedule() int {
	return s.countPhase(PhaseWaitingToSchedule)
}

// NumberOfActiveTasks returns the number of tasks currently holding cores.
func (s *Scheduler) NumberOfActiveTasks() int {
	return s.countPhase(PhaseActive)
}

// NumberOfTasksCompleted returns the number of finished tasks.
func (s *Scheduler) NumberOfTasksCompleted() int {
	return s.countPhase(PhaseCompleted)
}

func (s *Scheduler) countPhase(phase TaskPhase) int {
	count := 0
	for i := range s.tasks {
		if s.tasks[i].Phase == phase {
			count++
		}
	}
	return count
}

// TotalCoreRequirementOfActiveTasks sums the core requirements of all
// active tasks. Together with NumberOfFreeCores it forms the capacity
// invariant checked by Periodic.
func (s *Scheduler) TotalCoreRequirementOfActiveTasks() int {
	requirement := 0
	for i := range s.tasks {
		if s.tasks[i].Phase == PhaseActive {
			requirement += s.tasks[i].CoreRequirement
		}
	}
	return requirement
}

// Tasks returns a snapshot copy of the task records.
func (s *Scheduler) Tasks() []Task {
	out := make([]Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Cores returns a snapshot copy of the core records.
func (s *Scheduler) Cores() []Core {
	out := make([]Core, len(s.cores))
	copy(out, s.cores)
	return out
}

// isAssignedToTask reports whether the core is assigned to any task.
func (s *Scheduler) isAssignedToTask(coreID int) bool {
	return s.cores[coreID].AssignedTaskID != UnassignedTaskID
}

// isAssignedToThread reports whether a thread is attached to the core.
func (s *Scheduler) isAssignedToThread(coreID int) bool {
	return s.cores[coreID].AssignedThreadID != InvalidThreadID
}
