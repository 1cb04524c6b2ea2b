package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoreSet_AddHas(t *testing.T) {
	s := NewCoreSet(70)
	s.Add(0)
	s.Add(69)

	assert.True(t, s.Has(0))
	assert.True(t, s.Has(69))
	assert.False(t, s.Has(1))
	assert.False(t, s.Invalid())
	assert.False(t, s.Empty())
}

func TestCoreSet_InvalidSentinel(t *testing.T) {
	// GIVEN the park mask the scheduler pushes when no core is available
	s := SingleCoreSet(8, InvalidCoreID)

	// THEN it holds no real core and carries the invalid sentinel
	assert.True(t, s.Invalid())
	assert.True(t, s.Empty())
	assert.True(t, s.Has(InvalidCoreID))
	assert.Equal(t, "{invalid}", s.String())
}

func TestCoreSet_String(t *testing.T) {
	s := NewCoreSet(8)
	s.Add(1)
	s.Add(5)

	assert.Equal(t, "{1 5}", s.String())
}
