package formant

import (
	"time"
)

// Throttle is the recompute policy for an expensive analysis stage.
// A stage may recompute only when both the frame-count interval and the
// minimum wall-clock interval have elapsed; between recomputes the caller
// serves its cached result. Skipped chunks are simply skipped: the stage
// never goes back and processes a stale chunk after a newer one.
type Throttle struct {
	frameInterval int
	minInterval   time.Duration

	framesSince int
	lastAllowed time.Time
	primed      bool
}

// NewThrottle creates a throttle policy. frameInterval is in chunks
// (minimum 1); minInterval is wall-clock time between recomputes.
func NewThrottle(frameInterval int, minInterval time.Duration) *Throttle {
	if frameInterval < 1 {
		frameInterval = 1
	}
	return &Throttle{
		frameInterval: frameInterval,
		minInterval:   minInterval,
	}
}

// Allow reports whether the stage should recompute now. The first call
// always recomputes so a fresh session has a result immediately.
func (t *Throttle) Allow(now time.Time) bool {
	if !t.primed {
		t.primed = true
		t.framesSince = 0
		t.lastAllowed = now
		return true
	}

	t.framesSince++
	if t.framesSince < t.frameInterval {
		return false
	}
	if now.Sub(t.lastAllowed) < t.minInterval {
		return false
	}

	t.framesSince = 0
	t.lastAllowed = now
	return true
}

// Reset returns the throttle to its initial state
func (t *Throttle) Reset() {
	t.framesSince = 0
	t.lastAllowed = time.Time{}
	t.primed = false
}
