package simulation

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopTicksWhileActive(t *testing.T) {
	sim := New()
	var ticks atomic.Int64
	loop := NewLoop(sim, time.Millisecond, func(Stats) { ticks.Add(1) })

	require.True(t, loop.Toggle())
	assert.True(t, loop.Running())

	require.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	require.False(t, loop.Toggle())
	assert.False(t, loop.Running())

	frames := sim.FrameCount()
	assert.Equal(t, uint64(ticks.Load()), frames)

	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frames, sim.FrameCount())
}

func TestLoopStatsMatchFrame(t *testing.T) {
	sim := New()
	seen := make(chan Stats, 16)
	loop := NewLoop(sim, time.Millisecond, func(s Stats) {
		select {
		case seen <- s:
		default:
		}
	})

	loop.Toggle()
	defer loop.Stop()

	select {
	case s := <-seen:
		assert.Equal(t, StatsFor(s.Frame), s)
		assert.Equal(t, uint64(1), s.Frame)
	case <-time.After(time.Second):
		t.Fatal("no tick")
	}
}

func TestLoopStopIsIdempotent(t *testing.T) {
	loop := NewLoop(New(), 0, nil)

	loop.Stop()
	loop.Toggle()
	loop.Stop()
	loop.Stop()

	assert.False(t, loop.Running())
}

func TestNewLoopDefaultInterval(t *testing.T) {
	loop := NewLoop(New(), 0, nil)

	assert.Equal(t, DefaultInterval, loop.interval)
}
