package session

import (
	"fmt"
	"time"

	"github.com/halcyonlabs/voxtrain/logging"
)

// AlertKind identifies a class of discrete alert event
type AlertKind string

const (
	AlertLowPitch     AlertKind = "low_pitch"
	AlertHighPitch    AlertKind = "high_pitch"
	AlertStrain       AlertKind = "strain"
	AlertProgress     AlertKind = "progress"
	AlertSessionStart AlertKind = "session_start"
	AlertSessionEnd   AlertKind = "session_end"
	AlertMilestone    AlertKind = "milestone"
)

// Severity grades an alert event
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// AlertEvent is one discrete alert handed to the audio-cue and UI
// boundary. Consumers treat it as fire-and-forget; there is no
// acknowledgment protocol.
type AlertEvent struct {
	Kind      AlertKind `json:"kind"`
	Severity  Severity  `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// alertState is the per-kind rate-limiter state
type alertState struct {
	lastFired time.Time
	cooldown  time.Duration
}

// AlertEngine turns continuous measurements into discrete alert events,
// rate-limited per kind.
//
// Each kind tracks its own last-fired time: the limiter is a memoryless
// per-kind interval, not a shared global cooldown, so a low-pitch alert
// and a strain alert occurring together both fire. Milestone and
// session-lifecycle kinds are uncooled; they are rare by construction.
//
// Failure to physically play a cue is the emitting boundary's problem:
// the engine's bookkeeping is updated when an event is produced,
// regardless of what happens to it downstream.
type AlertEngine struct {
	states map[AlertKind]*alertState
	now    func() time.Time

	// Low-pitch dip tracking: the alert fires only after the pitch has
	// stayed below the goal band for the configured tolerance, so a
	// single dipped chunk in otherwise good voice stays quiet.
	dipStart    time.Time
	dipping     bool
	inBandRun   int
	voicedTotal int
	milestones  []int
	nextStone   int

	logger logging.Logger
}

// NewAlertEngine creates an alert engine with the given cooldowns
func NewAlertEngine(cfg Config) *AlertEngine {
	cfg = cfg.Normalized()

	return &AlertEngine{
		states: map[AlertKind]*alertState{
			AlertLowPitch:     {cooldown: cfg.PitchCooldown},
			AlertHighPitch:    {cooldown: cfg.PitchCooldown},
			AlertStrain:       {cooldown: cfg.SafetyCooldown},
			AlertProgress:     {cooldown: cfg.ProgressCooldown},
			AlertSessionStart: {},
			AlertSessionEnd:   {},
			AlertMilestone:    {},
		},
		now:        time.Now,
		milestones: []int{500, 2000, 5000, 10000},
		logger:     logging.WithFields(logging.Fields{"component": "alert_engine"}),
	}
}

// SetClock injects a clock for deterministic cooldown behavior under test
func (ae *AlertEngine) SetClock(now func() time.Time) {
	if now != nil {
		ae.now = now
	}
}

// SetCooldowns applies updated cooldown durations mid-session without
// disturbing last-fired bookkeeping
func (ae *AlertEngine) SetCooldowns(cfg Config) {
	cfg = cfg.Normalized()
	ae.states[AlertLowPitch].cooldown = cfg.PitchCooldown
	ae.states[AlertHighPitch].cooldown = cfg.PitchCooldown
	ae.states[AlertStrain].cooldown = cfg.SafetyCooldown
	ae.states[AlertProgress].cooldown = cfg.ProgressCooldown
}

// allow reports whether kind may fire now, updating last-fired when it may.
// An alert of kind K fires iff now - lastFired[K] >= cooldown[K].
func (ae *AlertEngine) allow(kind AlertKind) bool {
	st, ok := ae.states[kind]
	if !ok {
		return false
	}

	now := ae.now()
	if !st.lastFired.IsZero() && now.Sub(st.lastFired) < st.cooldown {
		return false
	}
	st.lastFired = now
	return true
}

// Fire produces a single event of the given kind if its cooldown permits,
// else nil. Used for session-lifecycle and externally-triggered kinds.
func (ae *AlertEngine) Fire(kind AlertKind, severity Severity, message string) *AlertEvent {
	if !ae.allow(kind) {
		return nil
	}
	return &AlertEvent{
		Kind:      kind,
		Severity:  severity,
		Message:   message,
		Timestamp: ae.now(),
	}
}

// Evaluate inspects one chunk's reading against the configured thresholds
// and returns zero or more alert events.
func (ae *AlertEngine) Evaluate(reading Reading, cfg Config) []AlertEvent {
	var events []AlertEvent
	now := ae.now()

	if reading.VoiceActive && reading.Pitch > 0 {
		ae.voicedTotal++

		low := cfg.GoalHz - cfg.GoalBandHz
		high := cfg.GoalHz + cfg.GoalBandHz

		switch {
		case reading.Pitch < low:
			ae.inBandRun = 0
			if !ae.dipping {
				ae.dipping = true
				ae.dipStart = now
			} else if now.Sub(ae.dipStart) >= cfg.DipTolerance {
				if ev := ae.Fire(AlertLowPitch, SeverityWarning,
					fmt.Sprintf("pitch %.0f Hz below goal band (%.0f-%.0f Hz)", reading.Pitch, low, high)); ev != nil {
					events = append(events, *ev)
				}
			}

		case reading.Pitch > cfg.HighPitchHz:
			ae.dipping = false
			ae.inBandRun = 0
			if ev := ae.Fire(AlertHighPitch, SeverityWarning,
				fmt.Sprintf("pitch %.0f Hz above %.0f Hz ceiling", reading.Pitch, cfg.HighPitchHz)); ev != nil {
				events = append(events, *ev)
			}

		case reading.Pitch >= low && reading.Pitch <= high:
			ae.dipping = false
			ae.inBandRun++
			if ae.inBandRun >= cfg.ProgressStreak {
				if ev := ae.Fire(AlertProgress, SeverityInfo,
					fmt.Sprintf("holding goal band around %.0f Hz", cfg.GoalHz)); ev != nil {
					events = append(events, *ev)
					ae.inBandRun = 0
				}
			}

		default:
			// In tolerance above the band but under the ceiling
			ae.dipping = false
		}

		if ae.nextStone < len(ae.milestones) && ae.voicedTotal >= ae.milestones[ae.nextStone] {
			if ev := ae.Fire(AlertMilestone, SeverityInfo,
				fmt.Sprintf("%d voiced chunks this session", ae.milestones[ae.nextStone])); ev != nil {
				events = append(events, *ev)
			}
			ae.nextStone++
		}
	} else {
		ae.dipping = false
	}

	if reading.Quality != nil && reading.Quality.StrainDetected {
		if ev := ae.Fire(AlertStrain, SeverityCritical,
			"vocal strain indicators detected, consider resting your voice"); ev != nil {
			events = append(events, *ev)
		}
	}

	return events
}

// Reset clears all per-kind state for a new session
func (ae *AlertEngine) Reset() {
	for _, st := range ae.states {
		st.lastFired = time.Time{}
	}
	ae.dipping = false
	ae.inBandRun = 0
	ae.voicedTotal = 0
	ae.nextStone = 0
}
