package pitch

import (
	"time"

	"github.com/halcyonlabs/voxtrain/dsp/common"
	"github.com/halcyonlabs/voxtrain/dsp/filters"
	"github.com/halcyonlabs/voxtrain/dsp/spectral"
	"github.com/halcyonlabs/voxtrain/dsp/windowing"
)

// Estimate is one per-chunk fundamental-frequency measurement.
// Frequency == 0 is the unvoiced sentinel, not a measurement: real
// frequencies are bounded below by the configured minimum, so zero never
// occurs as data.
type Estimate struct {
	Frequency  float64   `json:"frequency"`  // Smoothed F0 in Hz, 0 = unvoiced
	Raw        float64   `json:"raw"`        // Unsmoothed F0 in Hz, 0 = unvoiced
	Confidence float64   `json:"confidence"` // Peak strength, 0..1
	Timestamp  time.Time `json:"timestamp"`
}

// Voiced reports whether the chunk carried a detectable pitch
func (e Estimate) Voiced() bool {
	return e.Frequency > 0
}

// TrackerParams contains parameters for autocorrelation pitch tracking
type TrackerParams struct {
	SampleRate int `json:"sample_rate"`

	// Frequency range constraints for human voice
	MinFreq float64 `json:"min_freq"`
	MaxFreq float64 `json:"max_freq"`

	// Acceptance threshold on normalized autocorrelation peak height
	ConfidenceThreshold float64 `json:"confidence_threshold"`

	// EMA weight on the newest accepted estimate
	SmoothingAlpha float64 `json:"smoothing_alpha"`

	// Analysis window is sampleRate/WindowDivisor, floored at MinWindow
	WindowDivisor int `json:"window_divisor"`
	MinWindow     int `json:"min_window"`

	// Peak picking over the smoothed autocorrelation curve
	PeakHeightRatio float64 `json:"peak_height_ratio"`
	SmoothingSigma  float64 `json:"smoothing_sigma"`

	// Pre-emphasis coefficient
	PreEmphasis float64 `json:"pre_emphasis"`

	HistoryCapacity int `json:"history_capacity"`
}

// DefaultTrackerParams returns live-session defaults for the given rate
func DefaultTrackerParams(sampleRate int) TrackerParams {
	return TrackerParams{
		SampleRate:          sampleRate,
		MinFreq:             50.0,
		MaxFreq:             400.0,
		ConfidenceThreshold: 0.45,
		SmoothingAlpha:      0.75,
		WindowDivisor:       5,
		MinWindow:           256,
		PeakHeightRatio:     0.5,
		SmoothingSigma:      2.0,
		PreEmphasis:         0.97,
		HistoryCapacity:     1000,
	}
}

// Tracker performs per-chunk fundamental-frequency estimation with
// confidence gating and exponential smoothing.
//
// Algorithm: pre-emphasis, Hamming window, FFT-based autocorrelation
// normalized at zero lag, lag search restricted to the plausible pitch
// period range, Gaussian smoothing of the curve, relative-height peak
// picking with sub-harmonic spacing guard, parabolic refinement.
//
// References:
//   - Rabiner, L.R. (1977). "On the use of autocorrelation analysis for
//     pitch detection"
//   - Boersma, P. (1993). "Accurate short-term analysis of the fundamental
//     frequency"
//
// Detect is total: silence, clipping, and pure noise yield the unvoiced
// estimate (0, 0), never an error, NaN, or a negative value. A continuous
// real-time stream cannot afford a per-chunk failure path.
type Tracker struct {
	params TrackerParams
	now    func() time.Time

	autocorr    *spectral.AutoCorrelation
	preEmphasis *filters.PreEmphasis
	smoother    *common.GaussianSmoother
	picker      *common.PeakPicker
	ema         *common.ExponentialSmoother
	history     *History

	// Hamming windows cached per analysis size; the size only changes when
	// the chunk size does.
	windows map[int]*windowing.Hamming
}

// NewTracker creates a pitch tracker with default parameters
func NewTracker(sampleRate int) *Tracker {
	return NewTrackerWithParams(DefaultTrackerParams(sampleRate))
}

// NewTrackerWithParams creates a pitch tracker with custom parameters
func NewTrackerWithParams(params TrackerParams) *Tracker {
	minLag := lagFor(params.SampleRate, params.MaxFreq)

	return &Tracker{
		params:      params,
		now:         time.Now,
		autocorr:    spectral.NewAutoCorrelation(),
		preEmphasis: filters.NewPreEmphasis(params.PreEmphasis),
		smoother:    common.NewGaussianSmoother(params.SmoothingSigma),
		picker:      common.NewPeakPicker(params.PeakHeightRatio, minLag/2),
		ema:         common.NewExponentialSmoother(params.SmoothingAlpha),
		history:     NewHistory(params.HistoryCapacity),
		windows:     make(map[int]*windowing.Hamming),
	}
}

// SetClock injects a clock for deterministic timestamps under test
func (t *Tracker) SetClock(now func() time.Time) {
	if now != nil {
		t.now = now
	}
}

// History returns the tracker's bounded pitch history
func (t *Tracker) History() *History {
	return t.history
}

// Params returns the current parameters
func (t *Tracker) Params() TrackerParams {
	return t.params
}

// Detect estimates the fundamental frequency of one noise-suppressed chunk.
// The result frequency is either 0 (unvoiced) or within
// [MinFreq, MaxFreq]; confidence is clamped to [0, 1].
func (t *Tracker) Detect(chunk []float64) Estimate {
	est := t.detect(chunk)

	if est.Voiced() {
		est.Frequency = t.ema.Update(est.Raw)
	} else {
		// A gap in voicing restarts smoothing: bridging the previous
		// smoothed value across silence would fabricate a glide.
		t.ema.Reset()
	}
	t.history.Append(est.Frequency)

	return est
}

func (t *Tracker) detect(chunk []float64) Estimate {
	unvoiced := Estimate{Timestamp: t.now()}

	window := t.params.SampleRate / t.params.WindowDivisor
	if window > len(chunk) {
		window = len(chunk)
	}
	if window < t.params.MinWindow {
		return unvoiced
	}
	frame := chunk[:window]

	if common.RMS(frame) < 1e-5 {
		return unvoiced
	}

	processed := t.preEmphasis.Apply(frame)
	t.hammingFor(len(processed)).ApplyInPlace(processed)

	curve := t.autocorr.ComputeNormalized(processed)
	if len(curve) == 0 || curve[0] == 0 {
		return unvoiced
	}

	minLag := lagFor(t.params.SampleRate, t.params.MaxFreq)
	maxLag := lagFor(t.params.SampleRate, t.params.MinFreq)
	if maxLag >= len(curve) {
		maxLag = len(curve) - 1
	}
	if minLag < 1 || minLag >= maxLag {
		return unvoiced
	}

	searchRange := t.smoother.Smooth(curve[minLag : maxLag+1])
	peaks := t.picker.Pick(searchRange)
	if len(peaks) == 0 {
		return unvoiced
	}

	best := peaks[0]
	confidence := common.Clamp01(best.Value)
	if confidence < t.params.ConfidenceThreshold {
		return unvoiced
	}

	period := float64(minLag+best.Index) + best.Offset
	period = common.Clamp(period, float64(minLag), float64(maxLag))
	frequency := float64(t.params.SampleRate) / period
	if !common.IsFinite(frequency) {
		return unvoiced
	}

	return Estimate{
		Frequency:  frequency,
		Raw:        frequency,
		Confidence: confidence,
		Timestamp:  unvoiced.Timestamp,
	}
}

func (t *Tracker) hammingFor(size int) *windowing.Hamming {
	if w, ok := t.windows[size]; ok {
		return w
	}
	w := windowing.NewHamming(size, true)
	t.windows[size] = w
	return w
}

// Reset clears smoothing state and history for a new session
func (t *Tracker) Reset() {
	t.ema.Reset()
	t.history.Reset()
}

func lagFor(sampleRate int, freq float64) int {
	if freq <= 0 {
		return 1
	}
	lag := int(float64(sampleRate) / freq)
	if lag < 1 {
		lag = 1
	}
	return lag
}
