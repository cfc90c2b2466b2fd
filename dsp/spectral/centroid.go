package spectral

// Centroid computes the spectral centroid, the magnitude-weighted mean
// frequency of a spectrum. For voice it tracks perceived brightness:
// energy concentrated in higher harmonics pushes the centroid up.
type Centroid struct {
	fft *FFT
}

// NewCentroid creates a new spectral centroid calculator
func NewCentroid() *Centroid {
	return &Centroid{
		fft: NewFFT(),
	}
}

// ComputeBand computes the spectral centroid of signal restricted to the
// [minFreq, maxFreq] band. Returns 0 for empty or silent input.
func (c *Centroid) ComputeBand(signal []float64, sampleRate int, minFreq, maxFreq float64) float64 {
	if len(signal) == 0 || sampleRate <= 0 {
		return 0
	}

	magnitude := c.fft.Magnitude(signal)
	if len(magnitude) == 0 {
		return 0
	}

	binWidth := float64(sampleRate) / float64(len(signal))
	minBin := int(minFreq / binWidth)
	maxBin := int(maxFreq / binWidth)
	if minBin < 0 {
		minBin = 0
	}
	if maxBin >= len(magnitude) {
		maxBin = len(magnitude) - 1
	}
	if minBin >= maxBin {
		return 0
	}

	weightedSum := 0.0
	magnitudeSum := 0.0
	for i := minBin; i <= maxBin; i++ {
		freq := float64(i) * binWidth
		weightedSum += freq * magnitude[i]
		magnitudeSum += magnitude[i]
	}

	if magnitudeSum < 1e-12 {
		return 0
	}

	return weightedSum / magnitudeSum
}

// Compute computes the spectral centroid over the full spectrum
func (c *Centroid) Compute(signal []float64, sampleRate int) float64 {
	return c.ComputeBand(signal, sampleRate, 0, float64(sampleRate)/2)
}
