package common

import (
	"math"
	"testing"
)

func TestGaussianSmootherPreservesConstant(t *testing.T) {
	data := make([]float64, 32)
	for i := range data {
		data[i] = 2.5
	}

	smoothed := NewGaussianSmoother(2.0).Smooth(data)
	for i, v := range smoothed {
		if math.Abs(v-2.5) > 1e-9 {
			t.Fatalf("smoothed[%d] = %v, want 2.5 (kernel not normalized?)", i, v)
		}
	}
}

func TestGaussianSmootherReducesSpikeHeight(t *testing.T) {
	data := make([]float64, 21)
	data[10] = 1.0

	smoothed := NewGaussianSmoother(2.0).Smooth(data)

	if smoothed[10] >= 1.0 {
		t.Errorf("spike not attenuated: %v", smoothed[10])
	}
	if smoothed[8] <= 0 {
		t.Errorf("spike energy not spread to neighbors: %v", smoothed[8])
	}

	// The spike stays the maximum; smoothing must not move the peak
	for i, v := range smoothed {
		if v > smoothed[10] {
			t.Errorf("smoothed[%d] = %v exceeds the original peak position", i, v)
		}
	}
}

func TestExponentialSmoother(t *testing.T) {
	es := NewExponentialSmoother(0.75)

	if es.Primed() {
		t.Error("Primed before first sample")
	}

	// First sample initializes directly
	if got := es.Update(100); got != 100 {
		t.Errorf("first Update = %v, want 100", got)
	}

	// value = 0.75*new + 0.25*old
	if got := es.Update(200); math.Abs(got-175) > 1e-12 {
		t.Errorf("second Update = %v, want 175", got)
	}
	if es.Value() != es.Value() {
		t.Error("Value not stable between reads")
	}

	es.Reset()
	if es.Primed() {
		t.Error("Primed after Reset")
	}
	if got := es.Update(50); got != 50 {
		t.Errorf("Update after Reset = %v, want 50", got)
	}
}
