package spectral

import (
	"github.com/halcyonlabs/voxtrain/dsp/windowing"
)

// Welch estimates power spectral density by averaging windowed,
// overlapping periodograms.
//
// References:
//   - Welch, P.D. (1967). "The use of fast Fourier transform for the
//     estimation of power spectra"
//
// Averaging trades frequency resolution for variance reduction, which is
// the right trade for formant peak picking on noisy live microphone input.
type Welch struct {
	segmentLength int
	overlap       int
	fft           *FFT
	window        *windowing.Hamming
}

// NewWelch creates a Welch PSD estimator with the given segment length
// and 50% overlap.
func NewWelch(segmentLength int) *Welch {
	if segmentLength < 64 {
		segmentLength = 64
	}
	return &Welch{
		segmentLength: segmentLength,
		overlap:       segmentLength / 2,
		fft:           NewFFT(),
		window:        windowing.NewHamming(segmentLength, true),
	}
}

// PSDResult holds a single-sided power spectral density estimate
type PSDResult struct {
	Power       []float64 // Power per frequency bin
	Frequencies []float64 // Bin center frequencies in Hz
	BinWidth    float64   // Frequency resolution in Hz
}

// Compute estimates the PSD of signal sampled at sampleRate.
// Signals shorter than one segment are analyzed as a single zero-padded
// segment; empty input returns an empty result.
func (w *Welch) Compute(signal []float64, sampleRate int) *PSDResult {
	if len(signal) == 0 || sampleRate <= 0 {
		return &PSDResult{Power: []float64{}, Frequencies: []float64{}}
	}

	hop := w.segmentLength - w.overlap
	numBins := w.segmentLength/2 + 1
	power := make([]float64, numBins)

	segments := 0
	for start := 0; start == 0 || start+w.segmentLength <= len(signal); start += hop {
		segment := make([]float64, w.segmentLength)
		copy(segment, signal[start:min(start+w.segmentLength, len(signal))])
		w.window.ApplyInPlace(segment)

		spectrum := w.fft.Compute(segment)
		for i := 0; i < numBins && i < len(spectrum); i++ {
			re := real(spectrum[i])
			im := imag(spectrum[i])
			power[i] += re*re + im*im
		}
		segments++
	}

	if segments > 0 {
		scale := 1.0 / float64(segments*w.segmentLength)
		for i := range power {
			power[i] *= scale
		}
	}

	binWidth := float64(sampleRate) / float64(w.segmentLength)
	frequencies := make([]float64, numBins)
	for i := range frequencies {
		frequencies[i] = float64(i) * binWidth
	}

	return &PSDResult{
		Power:       power,
		Frequencies: frequencies,
		BinWidth:    binWidth,
	}
}
