package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTick = 2 * time.Millisecond

func TestTracker_AdvancesMonotonicallyBelowCap(t *testing.T) {
	tracker := NewTracker(testTick)
	defer tracker.StopAll()

	tracker.Start("user1:blueprint")

	assert.Eventually(t, func() bool {
		value, active := tracker.Get("user1:blueprint")
		return active && value > 0
	}, time.Second, testTick)

	// Let it run long enough to hit the ceiling
	last := 0
	violated := false
	require.Eventually(t, func() bool {
		value, active := tracker.Get("user1:blueprint")
		if !active || value < last || value > pendingCap {
			violated = true
			return true
		}
		last = value
		return value == pendingCap
	}, time.Second, testTick)

	assert.False(t, violated)
	assert.Equal(t, pendingCap, last)
}

func TestTracker_CompleteStopsTickingAtHundred(t *testing.T) {
	tracker := NewTracker(testTick)
	defer tracker.StopAll()

	tracker.Start("user1:test")
	time.Sleep(10 * testTick)
	tracker.Complete("user1:test")

	value, active := tracker.Get("user1:test")
	assert.Equal(t, 100, value)
	assert.False(t, active)

	// No further updates once stopped
	time.Sleep(10 * testTick)
	value, active = tracker.Get("user1:test")
	assert.Equal(t, 100, value)
	assert.False(t, active)
}

func TestTracker_FailStopsTickingAtZero(t *testing.T) {
	tracker := NewTracker(testTick)
	defer tracker.StopAll()

	tracker.Start("user1:solution")
	time.Sleep(10 * testTick)
	tracker.Fail("user1:solution")

	value, active := tracker.Get("user1:solution")
	assert.Equal(t, 0, value)
	assert.False(t, active)

	time.Sleep(10 * testTick)
	value, active = tracker.Get("user1:solution")
	assert.Equal(t, 0, value)
	assert.False(t, active)
}

func TestTracker_RestartReplacesTask(t *testing.T) {
	tracker := NewTracker(testTick)
	defer tracker.StopAll()

	tracker.Start("user1:blueprint")
	tracker.Complete("user1:blueprint")

	tracker.Start("user1:blueprint")
	value, active := tracker.Get("user1:blueprint")
	assert.True(t, active)
	assert.Less(t, value, 100)
}

func TestTracker_UnknownIdReadsZero(t *testing.T) {
	tracker := NewTracker(testTick)

	value, active := tracker.Get("nobody")
	assert.Zero(t, value)
	assert.False(t, active)

	// Stopping something never started must not panic
	tracker.Complete("nobody")
	tracker.Fail("nobody")
}

func TestTracker_StopAllReleasesEverything(t *testing.T) {
	tracker := NewTracker(testTick)

	tracker.Start("a")
	tracker.Start("b")
	tracker.StopAll()

	_, activeA := tracker.Get("a")
	_, activeB := tracker.Get("b")
	assert.False(t, activeA)
	assert.False(t, activeB)
}
