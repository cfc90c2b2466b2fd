package session

import (
	"time"

	"github.com/halcyonlabs/voxtrain/analysis/formant"
	"github.com/halcyonlabs/voxtrain/analysis/noise"
	"github.com/halcyonlabs/voxtrain/analysis/pitch"
	"github.com/halcyonlabs/voxtrain/analysis/quality"
	"github.com/halcyonlabs/voxtrain/dsp/common"
)

// Reading is the structured per-chunk result handed to the UI/logger
// boundary. Formants and Quality are nil when their throttled stages did
// not run for this chunk.
type Reading struct {
	Timestamp    time.Time             `json:"timestamp"`
	VoiceActive  bool                  `json:"voice_active"`
	Learning     bool                  `json:"learning"` // Noise calibration still running
	Pitch        float64               `json:"pitch"`    // Smoothed F0 in Hz, 0 = unvoiced
	Confidence   float64               `json:"confidence"`
	Formants     *formant.Frame        `json:"formants,omitempty"`
	Resonance    formant.Reading       `json:"resonance"`
	Quality      *quality.Metrics      `json:"quality,omitempty"`
	LightQuality *quality.LightMetrics `json:"light_quality,omitempty"`
	Mode         pitch.SpeechMode      `json:"mode"`
}

// Analyzer is the single owned analysis context for one session. It holds
// the noise profile, pitch history, resonance baseline, and alert state as
// exclusive fields, mutated only from the capture goroutine; the control
// side sees snapshots via Readings. No locks, single-writer discipline.
type Analyzer struct {
	cfg Config
	now func() time.Time

	profiler  *noise.Profiler
	tracker   *pitch.Tracker
	estimator *formant.Estimator
	quality   *quality.Analyzer
	alerts    *AlertEngine

	// Full roughness analysis is the most expensive stage and runs on its
	// own throttle; the lightweight variant covers the chunks in between.
	qualityThrottle *formant.Throttle
}

// NewAnalyzer creates the analysis context for one session
func NewAnalyzer(cfg Config) *Analyzer {
	return NewAnalyzerWithClock(cfg, time.Now)
}

// NewAnalyzerWithClock creates an analyzer with an injected clock, making
// wall-clock-bounded behavior (noise learning, throttles, cooldowns)
// deterministic under test.
func NewAnalyzerWithClock(cfg Config, now func() time.Time) *Analyzer {
	cfg = cfg.Normalized()
	if now == nil {
		now = time.Now
	}

	profCfg := noise.DefaultProfilerConfig(cfg.SampleRate)
	profCfg.LearnWindow = cfg.NoiseLearn
	profCfg.QuietThreshold = cfg.NoiseThreshold

	tracker := pitch.NewTracker(cfg.SampleRate)
	tracker.SetClock(now)

	estimator := formant.NewEstimator(cfg.SampleRate)
	estimator.SetClock(now)

	alerts := NewAlertEngine(cfg)
	alerts.SetClock(now)

	return &Analyzer{
		cfg:             cfg,
		now:             now,
		profiler:        noise.NewProfilerWithClock(profCfg, now),
		tracker:         tracker,
		estimator:       estimator,
		quality:         quality.NewAnalyzer(cfg.SampleRate),
		alerts:          alerts,
		qualityThrottle: formant.NewThrottle(5, 500*time.Millisecond),
	}
}

// Config returns the active configuration
func (a *Analyzer) Config() Config {
	return a.cfg
}

// SetConfig applies a runtime configuration change. Thresholds, goals, and
// cooldowns take effect on the next chunk; sample rate and chunk size are
// fixed at construction and ignored here.
func (a *Analyzer) SetConfig(cfg Config) {
	cfg = cfg.Normalized()
	cfg.SampleRate = a.cfg.SampleRate
	cfg.ChunkSize = a.cfg.ChunkSize
	a.cfg = cfg
	a.alerts.SetCooldowns(cfg)
}

// Tracker exposes the pitch tracker (history, params) to the boundary
func (a *Analyzer) Tracker() *pitch.Tracker {
	return a.tracker
}

// Estimator exposes the formant/resonance estimator to the boundary
func (a *Analyzer) Estimator() *formant.Estimator {
	return a.estimator
}

// Alerts exposes the alert engine for session-lifecycle events
func (a *Analyzer) Alerts() *AlertEngine {
	return a.alerts
}

// ProcessChunk runs one chunk through the full analysis path and returns
// the reading plus any alert events. Total: a malformed chunk produces an
// unvoiced reading, never a panic or error. Chunks must be delivered in
// arrival order; smoothing and baseline updates depend on it.
func (a *Analyzer) ProcessChunk(chunk []float64) (Reading, []AlertEvent) {
	reading := Reading{Timestamp: a.now()}

	if len(chunk) == 0 {
		return reading, nil
	}

	// Observe runs on every chunk: the profiler finalizes itself on the
	// first chunk past the learning window, and is a cheap no-op after.
	a.profiler.Observe(chunk)
	reading.Learning = a.profiler.Learning()

	suppressed := a.profiler.Suppress(chunk)

	rms := common.RMS(chunk)
	reading.VoiceActive = rms*a.cfg.Sensitivity > a.cfg.VADThreshold

	est := a.tracker.Detect(suppressed)
	reading.Pitch = est.Frequency
	reading.Confidence = est.Confidence
	reading.Mode = a.tracker.History().ClassifyMode(50)

	if est.Voiced() {
		reading.Resonance = a.estimator.ClassifyResonance(suppressed)
		reading.Formants = a.estimator.Estimate(suppressed)

		if a.qualityThrottle.Allow(a.now()) {
			m := a.quality.Roughness(suppressed, est.Frequency)
			reading.Quality = &m
		} else {
			lm := a.quality.LightweightRoughness(suppressed, est.Frequency)
			reading.LightQuality = &lm
		}
	}

	events := a.alerts.Evaluate(reading, a.cfg)
	return reading, events
}

// Breathiness scores the chunk's breathiness on demand (0..1)
func (a *Analyzer) Breathiness(chunk []float64) float64 {
	return a.quality.Breathiness(chunk)
}

// Nasality scores the chunk's nasality on demand (0..1)
func (a *Analyzer) Nasality(chunk []float64) float64 {
	return a.quality.Nasality(chunk)
}

// NoiseProfile returns the learned noise profile, nil while learning
func (a *Analyzer) NoiseProfile() *noise.Profile {
	return a.profiler.Profile()
}

// Reset returns every stage to its pre-session state
func (a *Analyzer) Reset() {
	a.profiler.Reset()
	a.tracker.Reset()
	a.estimator.Reset()
	a.alerts.Reset()
	a.qualityThrottle.Reset()
}
