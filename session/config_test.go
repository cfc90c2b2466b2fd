package session

import (
	"testing"
	"time"
)

func TestNormalizedFillsDefaults(t *testing.T) {
	got := Config{}.Normalized()
	want := DefaultConfig()

	if got != want {
		t.Errorf("Normalized zero config = %+v, want defaults %+v", got, want)
	}
}

func TestNormalizedClampsRanges(t *testing.T) {
	cfg := Config{
		GoalHz:      1000, // Above the trackable range
		GoalBandHz:  1,    // Too narrow to be useful
		Sensitivity: 100,
	}.Normalized()

	if cfg.GoalHz != 400 {
		t.Errorf("GoalHz = %v, want clamped to 400", cfg.GoalHz)
	}
	if cfg.GoalBandHz != 5 {
		t.Errorf("GoalBandHz = %v, want clamped to 5", cfg.GoalBandHz)
	}
	if cfg.Sensitivity != 10 {
		t.Errorf("Sensitivity = %v, want clamped to 10", cfg.Sensitivity)
	}
}

func TestNormalizedKeepsHighPitchAboveGoal(t *testing.T) {
	cfg := Config{GoalHz: 300, HighPitchHz: 200}.Normalized()
	if cfg.HighPitchHz < cfg.GoalHz {
		t.Errorf("HighPitchHz %v below GoalHz %v", cfg.HighPitchHz, cfg.GoalHz)
	}
}

func TestNormalizedBoundsLearnWindow(t *testing.T) {
	cfg := Config{NoiseLearn: 10 * time.Minute}.Normalized()
	if cfg.NoiseLearn > time.Minute {
		t.Errorf("NoiseLearn = %v, want capped at 1m", cfg.NoiseLearn)
	}
}

func TestChunkDuration(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ChunkDuration()
	secs := float64(4096) / 44100
	want := time.Duration(secs * float64(time.Second))
	if got != want {
		t.Errorf("ChunkDuration = %v, want %v", got, want)
	}

	if (Config{}).ChunkDuration() != 0 {
		t.Error("zero config ChunkDuration should be 0")
	}
}
