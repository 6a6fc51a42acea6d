package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeatingTimerStopsOnNegativeDelay(t *testing.T) {
	s := NewScheduler()
	runs := 0
	s.Start(0.01, func() float64 {
		runs++
		if runs == 3 {
			return -1
		}
		return 0.01
	})

	for tick := 1; tick <= 10; tick++ {
		s.Advance(float64(tick) * 0.01)
	}
	assert.Equal(t, 3, runs)
	assert.Equal(t, 0, s.Pending())
}

func TestTimerWaitsForDelay(t *testing.T) {
	s := NewScheduler()
	fired := false
	s.Start(0.5, func() float64 {
		fired = true
		return -1
	})

	s.Advance(0.25)
	assert.False(t, fired)
	s.Advance(0.5)
	assert.True(t, fired)
}

func TestTimersFireInArmOrder(t *testing.T) {
	s := NewScheduler()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		s.Start(0, func() float64 {
			order = append(order, i)
			return -1
		})
	}
	s.Advance(0.1)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestDeferredRunsNextTickBeforeTimers(t *testing.T) {
	s := NewScheduler()
	var order []string

	s.Start(0, func() float64 {
		order = append(order, "timer")
		s.Defer(func() { order = append(order, "deferred") })
		return 0
	})

	s.Advance(1)
	require.Equal(t, []string{"timer"}, order)

	s.Advance(2)
	assert.Equal(t, []string{"timer", "deferred", "timer"}, order)
}

func TestDeferQueuedByDeferredWaitsAnotherTick(t *testing.T) {
	s := NewScheduler()
	var order []int
	s.Defer(func() {
		order = append(order, 1)
		s.Defer(func() { order = append(order, 2) })
	})

	s.Advance(1)
	assert.Equal(t, []int{1}, order)
	s.Advance(2)
	assert.Equal(t, []int{1, 2}, order)
}

func TestZeroDelayTimerFiresOncePerAdvance(t *testing.T) {
	s := NewScheduler()
	runs := 0
	s.Start(0, func() float64 {
		runs++
		return 0
	})
	s.Advance(1)
	s.Advance(2)
	assert.Equal(t, 2, runs)
	assert.Equal(t, 1, s.Pending())
}
