package formant

import (
	"time"

	"github.com/halcyonlabs/voxtrain/dsp/common"
	"github.com/halcyonlabs/voxtrain/dsp/spectral"
)

// Frame is one formant analysis result. Cached between recomputes by the
// throttle policy, so consecutive chunks may observe the same frame.
type Frame struct {
	F1               float64   `json:"f1"`                // First formant in Hz
	F2               float64   `json:"f2"`                // Second formant in Hz
	Ratio            float64   `json:"f2_f1_ratio"`       // F2/F1
	ResonanceClarity float64   `json:"resonance_clarity"` // 0..1
	Timestamp        time.Time `json:"timestamp"`
}

// ResonanceClass buckets a centroid reading by its deviation from the
// per-user baseline
type ResonanceClass int

const (
	ResonanceVeryWarm ResonanceClass = iota
	ResonanceWarm
	ResonanceBalanced
	ResonanceBright
	ResonanceVeryBright
)

func (rc ResonanceClass) String() string {
	switch rc {
	case ResonanceVeryWarm:
		return "very warm"
	case ResonanceWarm:
		return "warm"
	case ResonanceBalanced:
		return "balanced"
	case ResonanceBright:
		return "bright"
	case ResonanceVeryBright:
		return "very bright"
	default:
		return "unknown"
	}
}

// Reading is one real-time resonance classification
type Reading struct {
	Centroid  float64        `json:"centroid"`  // Spectral centroid in Hz
	Deviation float64        `json:"deviation"` // Centroid minus baseline
	Class     ResonanceClass `json:"class"`
	Timestamp time.Time      `json:"timestamp"`
}

// Trend describes how resonance moved over the retained history
type Trend struct {
	Direction string  `json:"direction"` // "upward", "downward", "steady"
	DeltaHz   float64 `json:"delta_hz"`  // Late-session minus early-session mean deviation
	Samples   int     `json:"samples"`
}

// EstimatorParams configures formant and resonance estimation
type EstimatorParams struct {
	SampleRate int `json:"sample_rate"`

	// Formant extraction
	SegmentLength    int     `json:"segment_length"`      // Welch segment size
	PeakFloor        float64 `json:"peak_floor"`          // Relative to PSD max
	MinPeakSpacingHz float64 `json:"min_peak_spacing_hz"` // Between formant candidates
	ClarityRatio     float64 `json:"clarity_ratio"`       // F2/F1 above this earns clarity

	// Throttling
	FrameInterval int           `json:"frame_interval"`
	MinInterval   time.Duration `json:"min_interval"`

	// Resonance classification
	BaselineAlpha   float64 `json:"baseline_alpha"`
	CentroidMinHz   float64 `json:"centroid_min_hz"`
	CentroidMaxHz   float64 `json:"centroid_max_hz"`
	WarmThreshold   float64 `json:"warm_threshold"`   // |deviation| for warm/bright
	StrongThreshold float64 `json:"strong_threshold"` // |deviation| for the "very" buckets

	HistoryCapacity int `json:"history_capacity"`
}

// DefaultEstimatorParams returns live-session defaults
func DefaultEstimatorParams(sampleRate int) EstimatorParams {
	return EstimatorParams{
		SampleRate:       sampleRate,
		SegmentLength:    1024,
		PeakFloor:        0.10,
		MinPeakSpacingHz: 150.0,
		ClarityRatio:     2.0,
		FrameInterval:    2,
		MinInterval:      200 * time.Millisecond,
		BaselineAlpha:    0.01,
		CentroidMinHz:    200.0,
		CentroidMaxHz:    3000.0,
		WarmThreshold:    100.0,
		StrongThreshold:  300.0,
		HistoryCapacity:  512,
	}
}

// Estimator extracts formant peaks from a Welch PSD and classifies
// resonance by spectral centroid against a slowly-adapting baseline.
//
// Formant extraction is the most expensive stage in the pipeline (PSD plus
// peak search) and is not perceptually needed every chunk, so Estimate is
// throttled and serves a cached frame between recomputes. ClassifyResonance
// is the cheap high-rate companion and runs every chunk.
type Estimator struct {
	params EstimatorParams
	now    func() time.Time

	welch    *spectral.Welch
	centroid *spectral.Centroid
	picker   *common.PeakPicker
	baseline *Baseline
	throttle *Throttle

	cached  *Frame
	history []Reading
}

// NewEstimator creates a formant/resonance estimator with defaults
func NewEstimator(sampleRate int) *Estimator {
	return NewEstimatorWithParams(DefaultEstimatorParams(sampleRate))
}

// NewEstimatorWithParams creates an estimator with custom parameters
func NewEstimatorWithParams(params EstimatorParams) *Estimator {
	binWidth := float64(params.SampleRate) / float64(params.SegmentLength)
	spacingBins := int(params.MinPeakSpacingHz / binWidth)

	return &Estimator{
		params:   params,
		now:      time.Now,
		welch:    spectral.NewWelch(params.SegmentLength),
		centroid: spectral.NewCentroid(),
		picker:   common.NewPeakPicker(params.PeakFloor, spacingBins),
		baseline: NewBaseline(params.BaselineAlpha),
		throttle: NewThrottle(params.FrameInterval, params.MinInterval),
	}
}

// SetClock injects a clock for deterministic throttling under test
func (e *Estimator) SetClock(now func() time.Time) {
	if now != nil {
		e.now = now
	}
}

// Baseline returns the per-user resonance baseline
func (e *Estimator) Baseline() *Baseline {
	return e.baseline
}

// Estimate extracts formants from one chunk, or returns the cached frame
// when throttled. Returns nil when no frame has ever been computable
// (silence or too few spectral peaks so far).
func (e *Estimator) Estimate(chunk []float64) *Frame {
	if !e.throttle.Allow(e.now()) {
		return e.cached
	}

	frame := e.computeFrame(chunk)
	if frame != nil {
		e.cached = frame
	}
	return e.cached
}

func (e *Estimator) computeFrame(chunk []float64) *Frame {
	if len(chunk) == 0 {
		return nil
	}

	psd := e.welch.Compute(chunk, e.params.SampleRate)
	if len(psd.Power) == 0 {
		return nil
	}

	// Skip the DC bin: a residual offset would win the peak search.
	curve := make([]float64, len(psd.Power))
	copy(curve, psd.Power)
	curve[0] = 0

	peaks := e.picker.Pick(curve)
	if len(peaks) < 2 {
		return nil
	}

	f1 := (float64(peaks[0].Index) + peaks[0].Offset) * psd.BinWidth
	f2 := (float64(peaks[1].Index) + peaks[1].Offset) * psd.BinWidth
	if f2 < f1 {
		f1, f2 = f2, f1
	}
	if f1 <= 0 {
		return nil
	}

	ratio := f2 / f1
	clarity := 0.0
	if ratio > e.params.ClarityRatio {
		clarity = common.Clamp01((ratio - e.params.ClarityRatio) / e.params.ClarityRatio)
	}

	return &Frame{
		F1:               f1,
		F2:               f2,
		Ratio:            ratio,
		ResonanceClarity: clarity,
		Timestamp:        e.now(),
	}
}

// ClassifyResonance computes the band-limited spectral centroid of one
// chunk, folds it into the baseline, and buckets the deviation. Silent
// chunks return a zero-centroid balanced reading without touching the
// baseline.
func (e *Estimator) ClassifyResonance(chunk []float64) Reading {
	ts := e.now()

	c := e.centroid.ComputeBand(chunk, e.params.SampleRate, e.params.CentroidMinHz, e.params.CentroidMaxHz)
	if c <= 0 {
		return Reading{Class: ResonanceBalanced, Timestamp: ts}
	}

	baseline := e.baseline.Update(c)
	deviation := c - baseline

	reading := Reading{
		Centroid:  c,
		Deviation: deviation,
		Class:     e.classify(deviation),
		Timestamp: ts,
	}

	e.history = append(e.history, reading)
	if len(e.history) > e.params.HistoryCapacity {
		e.history = e.history[len(e.history)-e.params.HistoryCapacity:]
	}

	return reading
}

func (e *Estimator) classify(deviation float64) ResonanceClass {
	switch {
	case deviation <= -e.params.StrongThreshold:
		return ResonanceVeryWarm
	case deviation <= -e.params.WarmThreshold:
		return ResonanceWarm
	case deviation < e.params.WarmThreshold:
		return ResonanceBalanced
	case deviation < e.params.StrongThreshold:
		return ResonanceBright
	default:
		return ResonanceVeryBright
	}
}

// History returns the retained resonance readings, oldest-first
func (e *Estimator) History() []Reading {
	return e.history
}

// TrendSummary compares early-session and late-session mean deviation and
// reports which way resonance moved. Needs at least 6 readings.
func (e *Estimator) TrendSummary() Trend {
	n := len(e.history)
	if n < 6 {
		return Trend{Direction: "steady", Samples: n}
	}

	third := n / 3
	early := 0.0
	for _, r := range e.history[:third] {
		early += r.Deviation
	}
	early /= float64(third)

	late := 0.0
	for _, r := range e.history[n-third:] {
		late += r.Deviation
	}
	late /= float64(third)

	delta := late - early
	direction := "steady"
	if delta > 50 {
		direction = "upward"
	} else if delta < -50 {
		direction = "downward"
	}

	return Trend{Direction: direction, DeltaHz: delta, Samples: n}
}

// Reset clears cached frame, throttle, baseline, and history for a new
// session
func (e *Estimator) Reset() {
	e.cached = nil
	e.history = nil
	e.throttle.Reset()
	e.baseline = NewBaseline(e.params.BaselineAlpha)
}
