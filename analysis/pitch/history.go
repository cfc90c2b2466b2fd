package pitch

import (
	"github.com/halcyonlabs/voxtrain/dsp/common"
)

// SpeechMode classifies how the user is currently producing voice,
// derived from recent pitch history
type SpeechMode int

const (
	// ModeUnknown means not enough voiced history to classify
	ModeUnknown SpeechMode = iota

	// ModeSustained means a held, stable tone (vocal exercises, humming)
	ModeSustained

	// ModeConversational means running speech with natural pitch movement
	ModeConversational
)

func (m SpeechMode) String() string {
	switch m {
	case ModeSustained:
		return "sustained"
	case ModeConversational:
		return "conversational"
	default:
		return "unknown"
	}
}

// History is a bounded, append-only record of smoothed pitch values.
// Unvoiced chunks are recorded as 0 so voiced-ratio statistics stay honest.
// Oldest entries are evicted on overflow.
type History struct {
	ring *common.RingBuffer
}

// NewHistory creates a pitch history with the given capacity
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1000
	}
	return &History{
		ring: common.NewRingBuffer(capacity),
	}
}

// Append records a smoothed pitch value (0 for unvoiced)
func (h *History) Append(frequency float64) {
	h.ring.Push(frequency)
}

// Len returns the number of recorded values
func (h *History) Len() int {
	return h.ring.Len()
}

// Values returns the recorded values oldest-first
func (h *History) Values() []float64 {
	return h.ring.Values()
}

// Recent returns up to count of the most recent values, oldest-first
func (h *History) Recent(count int) []float64 {
	values := h.ring.Values()
	if count <= 0 || count >= len(values) {
		return values
	}
	return values[len(values)-count:]
}

// VoicedRatio returns the fraction of the last window values that were
// voiced (non-zero)
func (h *History) VoicedRatio(window int) float64 {
	recent := h.Recent(window)
	if len(recent) == 0 {
		return 0
	}

	voiced := 0
	for _, v := range recent {
		if v > 0 {
			voiced++
		}
	}
	return float64(voiced) / float64(len(recent))
}

// ClassifyMode classifies the recent history as sustained or conversational
// voice production. A mostly-voiced window with low relative pitch spread is
// a held tone; a moderately-voiced window with movement is speech.
func (h *History) ClassifyMode(window int) SpeechMode {
	recent := h.Recent(window)
	if len(recent) < 5 {
		return ModeUnknown
	}

	var voiced []float64
	for _, v := range recent {
		if v > 0 {
			voiced = append(voiced, v)
		}
	}

	ratio := float64(len(voiced)) / float64(len(recent))
	if ratio < 0.3 || len(voiced) < 3 {
		return ModeUnknown
	}

	mean := common.Mean(voiced)
	if mean <= 0 {
		return ModeUnknown
	}
	cv := common.StandardDeviation(voiced) / mean

	if ratio >= 0.8 && cv < 0.05 {
		return ModeSustained
	}
	return ModeConversational
}

// Reset discards all recorded values
func (h *History) Reset() {
	h.ring.Reset()
}
