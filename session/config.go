package session

import (
	"time"
)

// Config is the flat runtime-mutable parameter bag for a live session.
// The application shell owns persistence; the core only consumes values.
//
// All fields are adjustable mid-session through Session.UpdateConfig.
// Absent (zero) values receive defaults and out-of-range values are
// clamped rather than rejected: a bad slider value from the settings
// screen must never crash an active capture loop.
type Config struct {
	SampleRate int `json:"sample_rate"`
	ChunkSize  int `json:"chunk_size"`

	// Voice activity and noise handling
	VADThreshold   float64       `json:"vad_threshold"`   // RMS above this counts as voice
	NoiseThreshold float64       `json:"noise_threshold"` // RMS below this counts as background
	Sensitivity    float64       `json:"sensitivity"`     // Multiplier on measured RMS for VAD
	NoiseLearn     time.Duration `json:"noise_learn"`     // Noise-profile learning window

	// Pitch goal band
	GoalHz      float64 `json:"goal_hz"`       // Target fundamental frequency
	GoalBandHz  float64 `json:"goal_band_hz"`  // Half-width of the acceptable band
	HighPitchHz float64 `json:"high_pitch_hz"` // Ceiling for the high-pitch alert

	// Alerting
	DipTolerance     time.Duration `json:"dip_tolerance"`     // Sustained dip before low-pitch fires
	PitchCooldown    time.Duration `json:"pitch_cooldown"`    // low_pitch / high_pitch
	SafetyCooldown   time.Duration `json:"safety_cooldown"`   // strain
	ProgressCooldown time.Duration `json:"progress_cooldown"` // progress
	ProgressStreak   int           `json:"progress_streak"`   // In-band chunks before progress fires
}

// DefaultConfig returns the session defaults
func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		ChunkSize:        4096,
		VADThreshold:     0.015,
		NoiseThreshold:   0.01,
		Sensitivity:      1.0,
		NoiseLearn:       8 * time.Second,
		GoalHz:           180.0,
		GoalBandHz:       25.0,
		HighPitchHz:      350.0,
		DipTolerance:     3 * time.Second,
		PitchCooldown:    4 * time.Second,
		SafetyCooldown:   10 * time.Second,
		ProgressCooldown: 5 * time.Second,
		ProgressStreak:   30,
	}
}

// Normalized returns a copy with absent values defaulted and out-of-range
// values clamped
func (c Config) Normalized() Config {
	def := DefaultConfig()

	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = def.ChunkSize
	}

	if c.VADThreshold <= 0 {
		c.VADThreshold = def.VADThreshold
	}
	c.VADThreshold = clamp(c.VADThreshold, 1e-5, 0.5)

	if c.NoiseThreshold <= 0 {
		c.NoiseThreshold = def.NoiseThreshold
	}
	c.NoiseThreshold = clamp(c.NoiseThreshold, 1e-5, 0.5)

	if c.Sensitivity <= 0 {
		c.Sensitivity = def.Sensitivity
	}
	c.Sensitivity = clamp(c.Sensitivity, 0.1, 10.0)

	if c.NoiseLearn <= 0 {
		c.NoiseLearn = def.NoiseLearn
	}
	if c.NoiseLearn > time.Minute {
		c.NoiseLearn = time.Minute
	}

	if c.GoalHz <= 0 {
		c.GoalHz = def.GoalHz
	}
	c.GoalHz = clamp(c.GoalHz, 50.0, 400.0)

	if c.GoalBandHz <= 0 {
		c.GoalBandHz = def.GoalBandHz
	}
	c.GoalBandHz = clamp(c.GoalBandHz, 5.0, 100.0)

	if c.HighPitchHz <= 0 {
		c.HighPitchHz = def.HighPitchHz
	}
	c.HighPitchHz = clamp(c.HighPitchHz, c.GoalHz, 400.0)

	if c.DipTolerance <= 0 {
		c.DipTolerance = def.DipTolerance
	}
	if c.PitchCooldown <= 0 {
		c.PitchCooldown = def.PitchCooldown
	}
	if c.SafetyCooldown <= 0 {
		c.SafetyCooldown = def.SafetyCooldown
	}
	if c.ProgressCooldown <= 0 {
		c.ProgressCooldown = def.ProgressCooldown
	}
	if c.ProgressStreak <= 0 {
		c.ProgressStreak = def.ProgressStreak
	}

	return c
}

// ChunkDuration returns the real-time duration of one chunk
func (c Config) ChunkDuration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(c.ChunkSize) / float64(c.SampleRate) * float64(time.Second))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
