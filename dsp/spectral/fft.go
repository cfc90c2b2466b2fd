package spectral

import (
	"math"

	"github.com/mjibson/go-dsp/fft"
)

// FFT provides Fast Fourier Transform functionality for the analysis pipeline
type FFT struct{}

// NewFFT creates a new FFT calculator
func NewFFT() *FFT {
	return &FFT{}
}

// Compute computes the FFT of a real signal using mjibson/go-dsp.
// Handles all sizes, including non-power-of-2.
func (f *FFT) Compute(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.FFTReal(x)
}

// ComputeInverse computes the inverse FFT
func (f *FFT) ComputeInverse(x []complex128) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}

	return fft.IFFT(x)
}

// ComputeInverseReal computes the inverse FFT and returns the real part only
func (f *FFT) ComputeInverseReal(x []complex128) []float64 {
	if len(x) == 0 {
		return []float64{}
	}

	result := fft.IFFT(x)
	realResult := make([]float64, len(result))

	for i, val := range result {
		realResult[i] = real(val)
	}

	return realResult
}

// Magnitude computes the magnitude spectrum of a real signal.
// Returns only the first half of the spectrum (up to Nyquist).
func (f *FFT) Magnitude(x []float64) []float64 {
	spectrum := f.Compute(x)
	if len(spectrum) == 0 {
		return []float64{}
	}

	half := len(spectrum)/2 + 1
	magnitude := make([]float64, half)
	for i := range magnitude {
		re := real(spectrum[i])
		im := imag(spectrum[i])
		magnitude[i] = math.Sqrt(re*re + im*im)
	}

	return magnitude
}
