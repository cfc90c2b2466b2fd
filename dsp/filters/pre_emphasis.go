package filters

// PreEmphasis implements a first-order pre-emphasis filter:
//
//	y[n] = x[n] - α*x[n-1]
//
// Voice has a natural spectral tilt of roughly -6 dB/octave; flattening it
// before autocorrelation keeps the first formant from dominating the
// periodicity estimate.
//
// References:
//   - L.R. Rabiner, R.W. Schafer, "Digital Processing of Speech Signals",
//     Prentice-Hall, 1978, Chapter 4
type PreEmphasis struct {
	coefficient float64
}

// NewPreEmphasis creates a pre-emphasis filter with the given coefficient.
// Values outside (0, 1) fall back to the speech-standard 0.97.
func NewPreEmphasis(coefficient float64) *PreEmphasis {
	if coefficient <= 0 || coefficient >= 1 {
		coefficient = 0.97
	}
	return &PreEmphasis{coefficient: coefficient}
}

// NewPreEmphasisDefault creates a pre-emphasis filter with the standard
// speech coefficient (0.97).
func NewPreEmphasisDefault() *PreEmphasis {
	return NewPreEmphasis(0.97)
}

// Apply filters the signal into a new slice. The filter is applied per
// frame with no carried state: frame boundaries in the chunked pipeline are
// independent analyses, not a continuous stream reconstruction.
func (pe *PreEmphasis) Apply(signal []float64) []float64 {
	if len(signal) == 0 {
		return []float64{}
	}

	result := make([]float64, len(signal))
	result[0] = signal[0]
	for i := 1; i < len(signal); i++ {
		result[i] = signal[i] - pe.coefficient*signal[i-1]
	}

	return result
}

// Coefficient returns the pre-emphasis coefficient
func (pe *PreEmphasis) Coefficient() float64 {
	return pe.coefficient
}
