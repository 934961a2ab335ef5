package simulation

import (
	"sync"
	"time"
)

// DefaultInterval tick period of the interface check.
const DefaultInterval = 100 * time.Millisecond

// Loop ticks a Simulator at a fixed interval while it is detecting.
type Loop struct {
	sim      *Simulator
	interval time.Duration
	onTick   func(Stats)

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewLoop calls onTick with the new stats after every tick. onTick runs on
// the loop's goroutine.
func NewLoop(sim *Simulator, interval time.Duration, onTick func(Stats)) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{sim: sim, interval: interval, onTick: onTick}
}

// Toggle flips the simulator and starts or stops ticking to match. It
// returns the new detecting state.
func (l *Loop) Toggle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	detecting := l.sim.Toggle()
	if detecting {
		l.startLocked()
	} else {
		l.stopLocked()
	}
	return detecting
}

// Stop halts ticking without touching the simulator state. When it returns
// no tick is in flight.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopLocked()
}

// Running reports whether the ticker goroutine is active.
func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stop != nil
}

func (l *Loop) startLocked() {
	if l.stop != nil {
		return
	}
	l.stop = make(chan struct{})
	l.done = make(chan struct{})
	go l.run(l.stop, l.done)
}

func (l *Loop) stopLocked() {
	if l.stop == nil {
		return
	}
	close(l.stop)
	<-l.done
	l.stop, l.done = nil, nil
}

func (l *Loop) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats, ok := l.sim.Tick()
			if ok && l.onTick != nil {
				l.onTick(stats)
			}
		}
	}
}
