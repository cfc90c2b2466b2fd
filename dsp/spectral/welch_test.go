package spectral

import (
	"testing"
)

func TestWelchPeakAtToneFrequency(t *testing.T) {
	// 1 kHz at 8 kHz with 256-sample segments: the tone lands exactly on
	// bin 32, no leakage straddling
	signal := sine(1000, 8000, 2048, 0.5)

	psd := NewWelch(256).Compute(signal, 8000)
	if len(psd.Power) != 129 {
		t.Fatalf("power bins = %d, want 129", len(psd.Power))
	}
	if psd.BinWidth != 8000.0/256.0 {
		t.Errorf("BinWidth = %v, want %v", psd.BinWidth, 8000.0/256.0)
	}

	best := 0
	for i, p := range psd.Power {
		if p > psd.Power[best] {
			best = i
		}
	}
	if best != 32 {
		t.Errorf("strongest bin = %d (%.0f Hz), want 32 (1000 Hz)",
			best, float64(best)*psd.BinWidth)
	}
}

func TestWelchShortSignalSingleSegment(t *testing.T) {
	// Shorter than one segment: analyzed as a single zero-padded segment
	signal := sine(500, 8000, 100, 0.5)

	psd := NewWelch(256).Compute(signal, 8000)
	if len(psd.Power) != 129 {
		t.Fatalf("power bins = %d, want 129", len(psd.Power))
	}

	total := 0.0
	for _, p := range psd.Power {
		total += p
	}
	if total <= 0 {
		t.Error("expected nonzero power from short signal")
	}
}

func TestWelchEmptyInput(t *testing.T) {
	psd := NewWelch(256).Compute(nil, 8000)
	if len(psd.Power) != 0 {
		t.Errorf("power bins = %d for empty input, want 0", len(psd.Power))
	}
}

func TestBandEnergyRatio(t *testing.T) {
	// A 500 Hz tone has its energy in the low band
	signal := sine(500, 8000, 2048, 0.5)
	psd := NewWelch(256).Compute(signal, 8000)

	be := NewBandEnergy()
	low := be.Compute(psd, 100, 1000)
	high := be.Compute(psd, 2000, 3900)

	if low <= 0 {
		t.Fatalf("low-band energy = %v, want > 0", low)
	}
	if high >= low/100 {
		t.Errorf("high band carries %v of low band %v, want negligible", high, low)
	}

	if ratio := be.Ratio(psd, 2000, 3900, 100, 1000); ratio > 0.01 {
		t.Errorf("high/low ratio = %v, want near zero for a low tone", ratio)
	}
}
