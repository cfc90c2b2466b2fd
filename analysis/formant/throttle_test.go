package formant

import (
	"testing"
	"time"
)

func TestThrottleFirstCallAllowed(t *testing.T) {
	th := NewThrottle(2, 200*time.Millisecond)
	if !th.Allow(time.Now()) {
		t.Error("first call must always be allowed")
	}
}

func TestThrottleRequiresBothConditions(t *testing.T) {
	th := NewThrottle(2, 200*time.Millisecond)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	if !th.Allow(base) {
		t.Fatal("first call denied")
	}

	// One frame later: frame count not met
	if th.Allow(base.Add(100 * time.Millisecond)) {
		t.Error("allowed with only one frame elapsed")
	}

	// Frame count met, but only 150 ms since the last recompute
	if th.Allow(base.Add(150 * time.Millisecond)) {
		t.Error("allowed before the minimum interval elapsed")
	}

	// Both conditions hold
	if !th.Allow(base.Add(250 * time.Millisecond)) {
		t.Error("denied with both conditions satisfied")
	}
}

func TestThrottleReset(t *testing.T) {
	th := NewThrottle(4, time.Second)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	th.Allow(base)
	th.Reset()

	if !th.Allow(base.Add(time.Millisecond)) {
		t.Error("first call after Reset denied")
	}
}
