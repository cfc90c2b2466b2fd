package common

import (
	"math"
)

// GaussianSmoother applies light Gaussian smoothing to a curve.
// In the pitch path it is run over the autocorrelation curve before peak
// picking, so single-bin noise spikes don't masquerade as period candidates.
type GaussianSmoother struct {
	sigma  float64
	kernel []float64
}

// NewGaussianSmoother creates a smoother with the given standard deviation
// in samples. The kernel is truncated at 3 sigma.
func NewGaussianSmoother(sigma float64) *GaussianSmoother {
	if sigma <= 0 {
		sigma = 1.0
	}

	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)
	sum := 0.0
	for i := range kernel {
		x := float64(i - radius)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	return &GaussianSmoother{
		sigma:  sigma,
		kernel: kernel,
	}
}

// Smooth returns a smoothed copy of data. Edges are handled by renormalizing
// the kernel over the valid range, so the curve is not pulled toward zero
// at the boundaries.
func (gs *GaussianSmoother) Smooth(data []float64) []float64 {
	if len(data) == 0 {
		return []float64{}
	}

	radius := len(gs.kernel) / 2
	smoothed := make([]float64, len(data))

	for i := range data {
		sum := 0.0
		weight := 0.0
		for k, kv := range gs.kernel {
			j := i + k - radius
			if j < 0 || j >= len(data) {
				continue
			}
			sum += data[j] * kv
			weight += kv
		}
		if weight > 0 {
			smoothed[i] = sum / weight
		}
	}

	return smoothed
}

// ExponentialSmoother is a 2-point exponential moving average.
// alpha close to 1 favors the newest sample (responsive), close to 0
// favors history (stable).
type ExponentialSmoother struct {
	alpha    float64
	value    float64
	hasValue bool
}

// NewExponentialSmoother creates an EMA smoother with the given alpha,
// clamped to (0, 1].
func NewExponentialSmoother(alpha float64) *ExponentialSmoother {
	return &ExponentialSmoother{
		alpha: Clamp(alpha, 1e-6, 1.0),
	}
}

// Update folds a new sample into the average and returns the smoothed value.
// The first sample initializes the average directly.
func (es *ExponentialSmoother) Update(sample float64) float64 {
	if !es.hasValue {
		es.value = sample
		es.hasValue = true
		return es.value
	}

	es.value = es.alpha*sample + (1-es.alpha)*es.value
	return es.value
}

// Value returns the current smoothed value (0 before the first update)
func (es *ExponentialSmoother) Value() float64 {
	return es.value
}

// Primed reports whether at least one sample has been folded in
func (es *ExponentialSmoother) Primed() bool {
	return es.hasValue
}

// Reset clears the smoother state
func (es *ExponentialSmoother) Reset() {
	es.value = 0
	es.hasValue = false
}
