package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFIFOQueue_FrontIsLowestQueuedID(t *testing.T) {
	// GIVEN tasks in mixed phases
	tasks := []Task{
		{ID: 0, Phase: PhaseCompleted},
		{ID: 1, Phase: PhaseActive},
		{ID: 2, Phase: PhaseQueued},
		{ID: 3, Phase: PhaseQueued},
		{ID: 4, Phase: PhaseWaitingToSchedule},
	}

	// WHEN the FIFO policy picks the front
	front := FIFOQueue{}.FrontOfQueue(tasks)

	// THEN the lowest-indexed queued task is chosen
	assert.Equal(t, 2, front)
}

func TestFIFOQueue_EmptyQueue(t *testing.T) {
	tasks := []Task{
		{ID: 0, Phase: PhaseActive},
		{ID: 1, Phase: PhaseWaitingToSchedule},
	}

	assert.Equal(t, InvalidTaskID, FIFOQueue{}.FrontOfQueue(tasks))
}

func TestNewQueuePolicy_Names(t *testing.T) {
	policy, err := newQueuePolicy(QueuePolicyFIFO)
	assert.NoError(t, err)
	assert.NotNil(t, policy)

	_, err = newQueuePolicy("SRTF")
	assert.ErrorIs(t, err, ErrUnknownQueuePolicy)
}
