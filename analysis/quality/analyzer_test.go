package quality

import (
	"math"
	"testing"
)

const testRate = 44100

func sineChunk(freq float64, n int, amplitude float64) []float64 {
	chunk := make([]float64, n)
	for i := range chunk {
		chunk[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(testRate))
	}
	return chunk
}

func noiseChunk(n int, amplitude float64, seed uint32) []float64 {
	chunk := make([]float64, n)
	state := seed
	for i := range chunk {
		state = state*1664525 + 1013904223
		chunk[i] = amplitude * ((float64(state)/float64(0xFFFFFFFF))*2 - 1)
	}
	return chunk
}

// perturbedVoice synthesizes cycle-by-cycle voicing with controlled
// period and amplitude perturbation. Each cycle is one cosine period, so
// the cycle maximum sits at the cycle start and peak spacing equals the
// cycle period exactly.
//
// periodJitter and ampShimmer are fractional deviations applied with
// alternating sign in pairs (two long cycles, two short, ...), which keeps
// most cycle-to-cycle differences at the full deviation.
func perturbedVoice(basePeriod int, cycles int, periodJitter, ampShimmer float64) []float64 {
	var signal []float64
	for c := 0; c < cycles; c++ {
		sign := 1.0
		if (c/2)%2 == 1 {
			sign = -1.0
		}
		period := int(math.Round(float64(basePeriod) * (1 + sign*periodJitter)))
		amp := 0.5 * (1 + sign*ampShimmer)

		for i := 0; i < period; i++ {
			signal = append(signal, amp*math.Cos(2*math.Pi*float64(i)/float64(period)))
		}
	}
	return signal
}

func TestRoughnessCleanTone(t *testing.T) {
	a := NewAnalyzer(testRate)

	// 180 Hz is exactly 245 samples at this rate
	m := a.Roughness(perturbedVoice(245, 18, 0, 0), 180)

	if m.JitterPercent > 0.5 {
		t.Errorf("jitter = %v%% for a clean tone, want near zero", m.JitterPercent)
	}
	if m.ShimmerPercent > 1.0 {
		t.Errorf("shimmer = %v%% for a clean tone, want near zero", m.ShimmerPercent)
	}
	if m.HNRdB < 20 {
		t.Errorf("HNR = %v dB for a clean tone, want high", m.HNRdB)
	}
	if m.StrainDetected {
		t.Error("strain flagged on a clean tone")
	}
}

func TestRoughnessMeasuresJitter(t *testing.T) {
	a := NewAnalyzer(testRate)

	m := a.Roughness(perturbedVoice(245, 18, 0.01, 0), 180)

	if m.JitterPercent < 0.5 || m.JitterPercent > 2.0 {
		t.Errorf("jitter = %v%% for 1%% period perturbation, want in [0.5, 2.0]", m.JitterPercent)
	}
	if m.StrainDetected {
		t.Errorf("strain flagged at jitter %v%%, threshold is %v%%",
			m.JitterPercent, a.Params().StrainJitter)
	}
}

func TestRoughnessMeasuresShimmer(t *testing.T) {
	a := NewAnalyzer(testRate)

	m := a.Roughness(perturbedVoice(245, 18, 0, 0.03), 180)

	if m.ShimmerPercent < 1.5 || m.ShimmerPercent > 5.0 {
		t.Errorf("shimmer = %v%% for 3%% amplitude perturbation, want in [1.5, 5.0]", m.ShimmerPercent)
	}
}

func TestRoughnessStrainOnHeavyJitter(t *testing.T) {
	a := NewAnalyzer(testRate)

	m := a.Roughness(perturbedVoice(245, 18, 0.03, 0), 180)

	if m.JitterPercent <= a.Params().StrainJitter {
		t.Fatalf("jitter = %v%% for 3%% perturbation, expected above the strain threshold", m.JitterPercent)
	}
	if !m.StrainDetected {
		t.Error("strain not flagged on heavy jitter")
	}
}

func TestRoughnessUnvoiced(t *testing.T) {
	a := NewAnalyzer(testRate)

	if m := a.Roughness(sineChunk(180, 4096, 0.5), 0); m != (Metrics{}) {
		t.Errorf("Roughness with pitch 0 = %+v, want zero metrics", m)
	}
	if m := a.Roughness(nil, 180); m != (Metrics{}) {
		t.Errorf("Roughness of empty chunk = %+v, want zero metrics", m)
	}

	// Pitch implying a period longer than half the chunk
	if m := a.Roughness(sineChunk(60, 256, 0.5), 60); m != (Metrics{}) {
		t.Errorf("Roughness with oversized period = %+v, want zero metrics", m)
	}
}

func TestRoughnessClamps(t *testing.T) {
	a := NewAnalyzer(testRate)

	// Noise with a claimed pitch produces garbage measurements; the clamps
	// must hold regardless
	m := a.Roughness(noiseChunk(4096, 0.5, 7), 180)

	p := a.Params()
	if m.JitterPercent < 0 || m.JitterPercent > p.JitterCeiling {
		t.Errorf("jitter %v outside [0, %v]", m.JitterPercent, p.JitterCeiling)
	}
	if m.ShimmerPercent < 0 || m.ShimmerPercent > p.ShimmerCeiling {
		t.Errorf("shimmer %v outside [0, %v]", m.ShimmerPercent, p.ShimmerCeiling)
	}
	if m.HNRdB < p.HNRFloor || m.HNRdB > p.HNRCeiling {
		t.Errorf("HNR %v outside [%v, %v]", m.HNRdB, p.HNRFloor, p.HNRCeiling)
	}
}

func TestLightweightRoughness(t *testing.T) {
	a := NewAnalyzer(testRate)

	clean := a.LightweightRoughness(perturbedVoice(245, 18, 0, 0), 180)
	if clean.HNRdB < 20 {
		t.Errorf("lightweight HNR = %v for a clean tone, want high", clean.HNRdB)
	}
	if clean.Quality < 0.8 {
		t.Errorf("quality score = %v for a clean tone, want near 1", clean.Quality)
	}

	noisy := a.LightweightRoughness(noiseChunk(4096, 0.5, 3), 180)
	if noisy.HNRdB >= clean.HNRdB {
		t.Errorf("noise HNR %v not below clean HNR %v", noisy.HNRdB, clean.HNRdB)
	}
	if noisy.Quality < 0 || noisy.Quality > 1 {
		t.Errorf("quality %v outside [0, 1]", noisy.Quality)
	}

	if lm := a.LightweightRoughness(nil, 180); lm != (LightMetrics{}) {
		t.Errorf("lightweight of empty chunk = %+v, want zero", lm)
	}
}

func TestBreathiness(t *testing.T) {
	a := NewAnalyzer(testRate)

	clean := a.Breathiness(sineChunk(300, 4096, 0.5))
	breathy := a.Breathiness(noiseChunk(4096, 0.5, 11))

	if clean > 0.1 {
		t.Errorf("breathiness = %v for a clean low tone, want near 0", clean)
	}
	if breathy < 0.9 {
		t.Errorf("breathiness = %v for broadband noise, want near 1", breathy)
	}
	if a.Breathiness(nil) != 0 {
		t.Error("breathiness of empty chunk should be 0")
	}
}

func TestNasalityBounded(t *testing.T) {
	a := NewAnalyzer(testRate)

	inputs := [][]float64{
		sineChunk(250, 4096, 0.5),
		sineChunk(1000, 4096, 0.5),
		noiseChunk(4096, 0.5, 13),
		make([]float64, 4096),
		nil,
	}
	for i, chunk := range inputs {
		score := a.Nasality(chunk)
		if score < 0 || score > 1 {
			t.Errorf("input %d: nasality %v outside [0, 1]", i, score)
		}
	}
}

func TestNasalityHigherForNasalSpectrum(t *testing.T) {
	a := NewAnalyzer(testRate)

	// Murmur near 250 Hz plus a pole near 2500 Hz
	nasal := make([]float64, 4096)
	for i := range nasal {
		ts := float64(i) / float64(testRate)
		nasal[i] = 0.4*math.Sin(2*math.Pi*250*ts) + 0.3*math.Sin(2*math.Pi*2500*ts)
	}

	oral := sineChunk(1000, 4096, 0.5)

	if a.Nasality(nasal) <= a.Nasality(oral) {
		t.Errorf("nasality(nasal)=%v not above nasality(oral)=%v",
			a.Nasality(nasal), a.Nasality(oral))
	}
}
