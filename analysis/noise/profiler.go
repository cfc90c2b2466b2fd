package noise

import (
	"time"

	"github.com/halcyonlabs/voxtrain/dsp/common"
	"github.com/halcyonlabs/voxtrain/dsp/filters"
	"github.com/halcyonlabs/voxtrain/logging"
)

// LearningStatus reports the outcome of observing a chunk during the
// noise-learning phase
type LearningStatus int

const (
	// StatusLearning means the chunk was examined but not kept (too loud)
	StatusLearning LearningStatus = iota

	// StatusAccepted means the chunk was kept as a background-noise sample
	StatusAccepted

	// StatusComplete means the learning window has ended
	StatusComplete
)

// ProfilerConfig configures noise-profile learning and suppression
type ProfilerConfig struct {
	SampleRate     int           `json:"sample_rate"`
	LearnWindow    time.Duration `json:"learn_window"`     // Wall-clock learning duration
	QuietThreshold float64       `json:"quiet_threshold"`  // RMS below this counts as noise
	MaxChunks      int           `json:"max_chunks"`       // Bound on collected noise chunks
	MinChunks      int           `json:"min_chunks"`       // Minimum to build a usable profile
	HighPassCutoff float64       `json:"high_pass_cutoff"` // Hz, DC/rumble removal
	Attenuation    float64       `json:"attenuation"`      // Gate attenuation factor
	ProfileFactor  float64       `json:"profile_factor"`   // Gate margin over profile power
	RecentFactor   float64       `json:"recent_factor"`    // Gate margin over recent energy
}

// DefaultProfilerConfig returns the defaults used by a live session
func DefaultProfilerConfig(sampleRate int) ProfilerConfig {
	return ProfilerConfig{
		SampleRate:     sampleRate,
		LearnWindow:    8 * time.Second,
		QuietThreshold: 0.01,
		MaxChunks:      150,
		MinChunks:      5,
		HighPassCutoff: 100.0,
		Attenuation:    0.2,
		ProfileFactor:  1.5,
		RecentFactor:   0.3,
	}
}

// Profile is the learned background-noise reference for one session.
// Immutable once built. The zero value is the empty profile: suppression
// with an empty profile is the high-pass stage only, never an error.
type Profile struct {
	reference []float64
	power     float64
	chunks    int
}

// Empty reports whether the profile has no usable noise reference
func (p *Profile) Empty() bool {
	return p == nil || len(p.reference) == 0
}

// Power returns the mean power of the noise reference (0 when empty)
func (p *Profile) Power() float64 {
	if p.Empty() {
		return 0
	}
	return p.power
}

// Chunks returns how many noise chunks the profile was built from
func (p *Profile) Chunks() int {
	if p == nil {
		return 0
	}
	return p.chunks
}

// Profiler learns a background-noise profile during a wall-clock-bounded
// calibration window and afterwards gates chunks against it.
//
// The learning window is bounded by elapsed time rather than chunk count so
// irregular chunk delivery (a stalled device, a slow first read) still ends
// calibration on schedule.
type Profiler struct {
	cfg     ProfilerConfig
	now     func() time.Time
	started time.Time

	collected [][]float64
	profile   *Profile
	finalized bool

	highpass     *filters.HighPass
	recentEnergy *common.RingBuffer
	logger       logging.Logger
}

// NewProfiler creates a noise profiler
func NewProfiler(cfg ProfilerConfig) *Profiler {
	return &Profiler{
		cfg:          cfg,
		now:          time.Now,
		highpass:     filters.NewHighPass(cfg.HighPassCutoff, cfg.SampleRate),
		recentEnergy: common.NewRingBuffer(10),
		logger:       logging.WithFields(logging.Fields{"component": "noise_profiler"}),
	}
}

// NewProfilerWithClock creates a noise profiler with an injected clock.
// The analysis pipeline passes its own clock through so the wall-clock
// learning bound is deterministic under test.
func NewProfilerWithClock(cfg ProfilerConfig, now func() time.Time) *Profiler {
	p := NewProfiler(cfg)
	if now != nil {
		p.now = now
	}
	return p
}

// Learning reports whether the profiler is still inside its learning window
func (p *Profiler) Learning() bool {
	if p.finalized {
		return false
	}
	if p.started.IsZero() {
		return true
	}
	return p.now().Sub(p.started) < p.cfg.LearnWindow
}

// Observe examines one chunk during the learning phase. Quiet chunks are
// kept as noise samples; once the wall-clock window elapses the profile is
// finalized and StatusComplete is returned for this and all later calls.
func (p *Profiler) Observe(chunk []float64) LearningStatus {
	if p.finalized {
		return StatusComplete
	}

	if p.started.IsZero() {
		p.started = p.now()
	}

	if p.now().Sub(p.started) >= p.cfg.LearnWindow {
		p.Finalize()
		return StatusComplete
	}

	if len(chunk) == 0 {
		return StatusLearning
	}

	if common.RMS(chunk) < p.cfg.QuietThreshold && len(p.collected) < p.cfg.MaxChunks {
		kept := make([]float64, len(chunk))
		copy(kept, chunk)
		p.collected = append(p.collected, kept)
		return StatusAccepted
	}

	return StatusLearning
}

// Finalize ends the learning phase and builds the profile. Too few quiet
// chunks falls back to the empty profile: suppression degrades to a no-op
// gate instead of failing the session. Idempotent.
func (p *Profiler) Finalize() *Profile {
	if p.finalized {
		return p.profile
	}
	p.finalized = true

	if len(p.collected) < p.cfg.MinChunks {
		p.logger.Warn("insufficient noise samples, suppression disabled", logging.Fields{
			"collected": len(p.collected),
			"required":  p.cfg.MinChunks,
		})
		p.profile = &Profile{chunks: len(p.collected)}
		p.collected = nil
		return p.profile
	}

	total := 0
	for _, c := range p.collected {
		total += len(c)
	}
	reference := make([]float64, 0, total)
	for _, c := range p.collected {
		reference = append(reference, c...)
	}

	p.profile = &Profile{
		reference: reference,
		power:     common.Power(reference),
		chunks:    len(p.collected),
	}
	p.collected = nil

	p.logger.Info("noise profile learned", logging.Fields{
		"chunks":  p.profile.chunks,
		"samples": len(reference),
		"power":   p.profile.power,
	})

	return p.profile
}

// Profile returns the learned profile, or nil while still learning
func (p *Profiler) Profile() *Profile {
	return p.profile
}

// Suppress applies DC/rumble removal and the adaptive noise gate to a chunk.
// The gate attenuates rather than zeroes: soft voiced onsets below the gate
// still carry periodicity the pitch tracker needs, so they are dimmed, not
// destroyed. With an empty profile the gate is skipped entirely and only
// the high-pass stage runs.
func (p *Profiler) Suppress(chunk []float64) []float64 {
	if len(chunk) == 0 {
		return chunk
	}

	filtered := p.highpass.Apply(chunk)

	if p.profile.Empty() {
		return filtered
	}

	power := common.Power(filtered)
	recentAvg := p.recentEnergy.Mean()
	p.recentEnergy.Push(power)

	gate := p.profile.Power() * p.cfg.ProfileFactor
	if adaptive := recentAvg * p.cfg.RecentFactor; adaptive > gate {
		gate = adaptive
	}

	if power >= gate {
		return filtered
	}

	attenuated := make([]float64, len(filtered))
	for i, v := range filtered {
		attenuated[i] = v * p.cfg.Attenuation
	}
	return attenuated
}

// Reset returns the profiler to its pre-learning state for a new session
func (p *Profiler) Reset() {
	p.started = time.Time{}
	p.collected = nil
	p.profile = nil
	p.finalized = false
	p.recentEnergy.Reset()
}
