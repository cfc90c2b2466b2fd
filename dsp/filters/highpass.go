package filters

import (
	"math"

	"github.com/halcyonlabs/voxtrain/dsp/common"
)

// HighPass is a 3rd-order Butterworth high-pass filter applied zero-phase
// (forward-backward). It strips DC offset and low-frequency rumble ahead of
// the noise gate without smearing the phase of the voiced signal, which the
// downstream autocorrelation pitch tracker depends on.
//
// The 3rd-order Butterworth is realized as a cascade of a first-order
// section and a biquad with Q = 1 (the Butterworth pole pair at ±60°).
//
// References:
//   - Butterworth, S. (1930). "On the Theory of Filter Amplifiers"
//   - Bristow-Johnson, R. "Cookbook formulae for audio EQ biquad filter
//     coefficients"
type HighPass struct {
	cutoff     float64
	sampleRate int

	// First-order section
	fb0, fb1, fa1 float64

	// Biquad section
	bb0, bb1, bb2, ba1, ba2 float64

	valid bool
}

// NewHighPass designs a zero-phase high-pass with the given cutoff in Hz.
// An unrealizable design (cutoff out of (0, Nyquist)) marks the filter
// invalid; Apply then passes the signal through untouched.
func NewHighPass(cutoff float64, sampleRate int) *HighPass {
	hp := &HighPass{
		cutoff:     cutoff,
		sampleRate: sampleRate,
	}
	hp.design()
	return hp
}

func (hp *HighPass) design() {
	nyquist := float64(hp.sampleRate) / 2
	if hp.cutoff <= 0 || hp.cutoff >= nyquist || hp.sampleRate <= 0 {
		return
	}

	// First-order section via bilinear transform
	k := math.Tan(math.Pi * hp.cutoff / float64(hp.sampleRate))
	hp.fb0 = 1 / (1 + k)
	hp.fb1 = -1 / (1 + k)
	hp.fa1 = (k - 1) / (k + 1)

	// Biquad section, Q = 1 for the Butterworth pole pair
	w0 := 2 * math.Pi * hp.cutoff / float64(hp.sampleRate)
	cosw0 := math.Cos(w0)
	alpha := math.Sin(w0) / 2 // sin(w0) / (2*Q), Q = 1

	a0 := 1 + alpha
	hp.bb0 = (1 + cosw0) / 2 / a0
	hp.bb1 = -(1 + cosw0) / a0
	hp.bb2 = (1 + cosw0) / 2 / a0
	hp.ba1 = -2 * cosw0 / a0
	hp.ba2 = (1 - alpha) / a0

	for _, c := range []float64{hp.fb0, hp.fb1, hp.fa1, hp.bb0, hp.bb1, hp.bb2, hp.ba1, hp.ba2} {
		if !common.IsFinite(c) {
			return
		}
	}
	hp.valid = true
}

// Valid reports whether the filter design succeeded
func (hp *HighPass) Valid() bool {
	return hp.valid
}

// Apply filters the signal zero-phase: forward pass, then a reversed pass,
// canceling the phase shift of each. Any numerical failure returns the
// input unchanged; a single chunk's filtering must never take the stream
// down with it.
func (hp *HighPass) Apply(signal []float64) []float64 {
	if !hp.valid || len(signal) == 0 {
		return signal
	}

	forward := hp.applyOnce(signal)
	reverse(forward)
	backward := hp.applyOnce(forward)
	reverse(backward)

	for _, v := range backward {
		if !common.IsFinite(v) {
			return signal
		}
	}

	return backward
}

func (hp *HighPass) applyOnce(signal []float64) []float64 {
	out := make([]float64, len(signal))

	// First-order section
	var x1, y1 float64
	for i, x := range signal {
		y := hp.fb0*x + hp.fb1*x1 - hp.fa1*y1
		x1 = x
		y1 = y
		out[i] = y
	}

	// Biquad section, in place over the first section's output
	var bx1, bx2, by1, by2 float64
	for i, x := range out {
		y := hp.bb0*x + hp.bb1*bx1 + hp.bb2*bx2 - hp.ba1*by1 - hp.ba2*by2
		bx2 = bx1
		bx1 = x
		by2 = by1
		by1 = y
		out[i] = y
	}

	return out
}

func reverse(data []float64) {
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
}
