package pitch

import (
	"math"
	"testing"
)

func TestHistoryEviction(t *testing.T) {
	h := NewHistory(3)
	for _, v := range []float64{100, 110, 120, 130} {
		h.Append(v)
	}

	if h.Len() != 3 {
		t.Fatalf("Len = %d, want 3", h.Len())
	}
	values := h.Values()
	if values[0] != 110 || values[2] != 130 {
		t.Errorf("Values = %v, want [110 120 130]", values)
	}
}

func TestVoicedRatio(t *testing.T) {
	h := NewHistory(10)
	for _, v := range []float64{180, 0, 185, 0} {
		h.Append(v)
	}

	if got := h.VoicedRatio(4); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("VoicedRatio = %v, want 0.5", got)
	}
	if got := NewHistory(10).VoicedRatio(4); got != 0 {
		t.Errorf("VoicedRatio of empty history = %v, want 0", got)
	}
}

func TestClassifyMode(t *testing.T) {
	t.Run("too little history", func(t *testing.T) {
		h := NewHistory(100)
		h.Append(180)
		if got := h.ClassifyMode(50); got != ModeUnknown {
			t.Errorf("ClassifyMode = %v, want unknown", got)
		}
	})

	t.Run("sustained tone", func(t *testing.T) {
		h := NewHistory(100)
		for i := 0; i < 20; i++ {
			h.Append(180 + float64(i%3)) // 180..182, tiny spread
		}
		if got := h.ClassifyMode(20); got != ModeSustained {
			t.Errorf("ClassifyMode = %v, want sustained", got)
		}
	})

	t.Run("running speech", func(t *testing.T) {
		h := NewHistory(100)
		// Half voiced with wide movement, half unvoiced pauses
		for i := 0; i < 20; i++ {
			if i%2 == 0 {
				h.Append(120 + float64(i)*8)
			} else {
				h.Append(0)
			}
		}
		if got := h.ClassifyMode(20); got != ModeConversational {
			t.Errorf("ClassifyMode = %v, want conversational", got)
		}
	})

	t.Run("mostly silence", func(t *testing.T) {
		h := NewHistory(100)
		for i := 0; i < 20; i++ {
			if i == 5 {
				h.Append(180)
			} else {
				h.Append(0)
			}
		}
		if got := h.ClassifyMode(20); got != ModeUnknown {
			t.Errorf("ClassifyMode = %v, want unknown", got)
		}
	})
}

func TestSpeechModeString(t *testing.T) {
	if ModeSustained.String() != "sustained" ||
		ModeConversational.String() != "conversational" ||
		ModeUnknown.String() != "unknown" {
		t.Error("SpeechMode strings wrong")
	}
}
