package noise

import (
	"math"
	"testing"
	"time"

	"github.com/halcyonlabs/voxtrain/dsp/common"
)

const testRate = 44100

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (fc *fakeClock) Now() time.Time          { return fc.t }
func (fc *fakeClock) Advance(d time.Duration) { fc.t = fc.t.Add(d) }

func toneChunk(freq float64, n int, amplitude float64) []float64 {
	chunk := make([]float64, n)
	for i := range chunk {
		chunk[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(testRate))
	}
	return chunk
}

func quietChunk(n int, amplitude float64, seed uint32) []float64 {
	chunk := make([]float64, n)
	state := seed
	for i := range chunk {
		state = state*1664525 + 1013904223
		chunk[i] = amplitude * ((float64(state)/float64(0xFFFFFFFF))*2 - 1)
	}
	return chunk
}

func TestLearningWindowIsWallClockBounded(t *testing.T) {
	clock := newFakeClock()
	p := NewProfilerWithClock(DefaultProfilerConfig(testRate), clock.Now)

	if !p.Learning() {
		t.Fatal("not learning before first chunk")
	}

	// Feed quiet chunks for just under the window
	for i := 0; i < 10; i++ {
		status := p.Observe(quietChunk(4096, 0.004, uint32(i+1)))
		if status == StatusComplete {
			t.Fatalf("learning completed early at chunk %d", i)
		}
		clock.Advance(500 * time.Millisecond)
	}

	// 5 s elapsed, still inside the 8 s window
	if !p.Learning() {
		t.Fatal("learning ended before the window elapsed")
	}

	clock.Advance(4 * time.Second)
	if p.Learning() {
		t.Error("still learning after the window elapsed")
	}
	if status := p.Observe(quietChunk(4096, 0.004, 77)); status != StatusComplete {
		t.Errorf("Observe after window = %v, want StatusComplete", status)
	}

	profile := p.Profile()
	if profile.Empty() {
		t.Fatal("profile empty after collecting quiet chunks")
	}
	if profile.Chunks() != 10 {
		t.Errorf("profile chunks = %d, want 10", profile.Chunks())
	}
}

func TestLoudChunksNotCollected(t *testing.T) {
	clock := newFakeClock()
	p := NewProfilerWithClock(DefaultProfilerConfig(testRate), clock.Now)

	if status := p.Observe(toneChunk(200, 4096, 0.3)); status != StatusLearning {
		t.Errorf("loud chunk status = %v, want StatusLearning", status)
	}
	if status := p.Observe(quietChunk(4096, 0.004, 1)); status != StatusAccepted {
		t.Errorf("quiet chunk status = %v, want StatusAccepted", status)
	}
}

func TestInsufficientSamplesFallsBackToEmptyProfile(t *testing.T) {
	clock := newFakeClock()
	p := NewProfilerWithClock(DefaultProfilerConfig(testRate), clock.Now)

	// Only two quiet chunks, below the minimum of five
	p.Observe(quietChunk(4096, 0.004, 1))
	p.Observe(quietChunk(4096, 0.004, 2))

	profile := p.Finalize()
	if !profile.Empty() {
		t.Error("profile should be empty with too few samples")
	}
	if p.Learning() {
		t.Error("still learning after Finalize")
	}

	// Suppression degrades to high-pass only, never an error
	voice := toneChunk(200, 4096, 0.3)
	out := p.Suppress(voice)
	inRMS := common.RMS(voice)
	outRMS := common.RMS(out)
	if math.Abs(outRMS-inRMS) > inRMS*0.15 {
		t.Errorf("empty-profile suppression changed RMS: in %v, out %v", inRMS, outRMS)
	}
}

func TestFinalizeIdempotent(t *testing.T) {
	clock := newFakeClock()
	p := NewProfilerWithClock(DefaultProfilerConfig(testRate), clock.Now)

	for i := 0; i < 8; i++ {
		p.Observe(quietChunk(4096, 0.004, uint32(i+1)))
	}

	first := p.Finalize()
	second := p.Finalize()
	if first != second {
		t.Error("Finalize not idempotent")
	}
}

func TestSuppressGatesQuietChunksAndPassesVoice(t *testing.T) {
	clock := newFakeClock()
	cfg := DefaultProfilerConfig(testRate)
	p := NewProfilerWithClock(cfg, clock.Now)

	for i := 0; i < 20; i++ {
		p.Observe(quietChunk(4096, 0.004, uint32(i+1)))
	}
	if p.Finalize().Empty() {
		t.Fatal("profile empty")
	}

	// Background-level chunk falls below the gate and gets attenuated
	background := quietChunk(4096, 0.004, 500)
	gated := p.Suppress(background)
	inRMS := common.RMS(background)
	outRMS := common.RMS(gated)
	if outRMS > inRMS*(cfg.Attenuation+0.1) {
		t.Errorf("background not attenuated: in %v, out %v", inRMS, outRMS)
	}

	// Voiced-level chunk passes the gate unattenuated
	voice := toneChunk(200, 4096, 0.3)
	passed := p.Suppress(voice)
	voiceIn := common.RMS(voice)
	voiceOut := common.RMS(passed)
	if voiceOut < voiceIn*0.8 {
		t.Errorf("voice attenuated by the gate: in %v, out %v", voiceIn, voiceOut)
	}
}

func TestSuppressEmptyChunk(t *testing.T) {
	p := NewProfiler(DefaultProfilerConfig(testRate))
	if out := p.Suppress(nil); len(out) != 0 {
		t.Errorf("Suppress(nil) returned %d samples", len(out))
	}
}

func TestReset(t *testing.T) {
	clock := newFakeClock()
	p := NewProfilerWithClock(DefaultProfilerConfig(testRate), clock.Now)

	for i := 0; i < 8; i++ {
		p.Observe(quietChunk(4096, 0.004, uint32(i+1)))
	}
	p.Finalize()
	p.Reset()

	if !p.Learning() {
		t.Error("not learning after Reset")
	}
	if p.Profile() != nil {
		t.Error("profile survived Reset")
	}
}
