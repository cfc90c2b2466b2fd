package formant

// Baseline is the per-user slowly-adapting spectral-centroid reference that
// resonance readings are classified against. It adapts by exponential
// moving average with a small alpha, so after the first sample it always
// reflects a weighted history rather than any single noisy measurement.
// Never reset except at session restart.
type Baseline struct {
	alpha       float64
	centroid    float64
	sampleCount int
}

// NewBaseline creates a baseline with the given EMA alpha (default 0.01
// for out-of-range values)
func NewBaseline(alpha float64) *Baseline {
	if alpha <= 0 || alpha >= 1 {
		alpha = 0.01
	}
	return &Baseline{alpha: alpha}
}

// Update folds a centroid measurement into the baseline and returns the
// updated value. The first sample initializes the baseline directly.
func (b *Baseline) Update(centroid float64) float64 {
	if b.sampleCount == 0 {
		b.centroid = centroid
	} else {
		b.centroid = b.alpha*centroid + (1-b.alpha)*b.centroid
	}
	b.sampleCount++
	return b.centroid
}

// Centroid returns the current baseline centroid in Hz (0 before the
// first sample)
func (b *Baseline) Centroid() float64 {
	return b.centroid
}

// SampleCount returns how many measurements have been folded in
func (b *Baseline) SampleCount() int {
	return b.sampleCount
}

// Primed reports whether at least one sample has been folded in
func (b *Baseline) Primed() bool {
	return b.sampleCount > 0
}
