package formant

import (
	"math"
	"testing"
)

func TestBaselineFirstSampleInitializes(t *testing.T) {
	b := NewBaseline(0.01)

	if b.Primed() {
		t.Error("Primed before any sample")
	}
	if got := b.Update(1200); got != 1200 {
		t.Errorf("first Update = %v, want 1200", got)
	}
	if !b.Primed() || b.SampleCount() != 1 {
		t.Errorf("Primed=%v SampleCount=%d after first sample", b.Primed(), b.SampleCount())
	}
}

func TestBaselineConvergesWithoutOvershoot(t *testing.T) {
	b := NewBaseline(0.01)
	b.Update(1000)

	prev := b.Centroid()
	for i := 0; i < 500; i++ {
		got := b.Update(1400)
		if got > 1400 {
			t.Fatalf("baseline overshot the target: %v", got)
		}
		if got < prev {
			t.Fatalf("baseline moved away from the target: %v -> %v", prev, got)
		}
		prev = got
	}

	// alpha 0.01 over 500 steps closes ~99.3% of the gap
	if math.Abs(b.Centroid()-1400) > 10 {
		t.Errorf("baseline = %v after 500 updates, want near 1400", b.Centroid())
	}
}

func TestBaselineMovesSlowly(t *testing.T) {
	b := NewBaseline(0.01)
	b.Update(1000)

	// A single outlier reading barely moves the baseline
	b.Update(2000)
	if got := b.Centroid(); math.Abs(got-1010) > 1e-9 {
		t.Errorf("baseline = %v after one outlier, want 1010", got)
	}
}
