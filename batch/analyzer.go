package batch

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/halcyonlabs/voxtrain/analysis/pitch"
)

// Report summarizes the pitch contour of a recorded clip. All statistics
// are computed over voiced windows only.
type Report struct {
	MeanHz      float64 `json:"mean_hz"`
	MedianHz    float64 `json:"median_hz"`
	MinHz       float64 `json:"min_hz"`
	MaxHz       float64 `json:"max_hz"`
	StdDevHz    float64 `json:"std_dev_hz"`
	Stability   float64 `json:"stability"`    // 1 - coefficient of variation, clamped to [0, 1]
	VoicedRatio float64 `json:"voiced_ratio"` // Voiced windows / total windows
	Windows     int     `json:"windows"`
	DurationSec float64 `json:"duration_sec"`
}

// AnalyzerOptions configures offline clip analysis
type AnalyzerOptions struct {
	// WindowSize in samples; 0 picks the tracker's own analysis window
	WindowSize int

	// HopSize in samples; 0 means 50% overlap
	HopSize int

	// Tracker overrides pitch-tracking parameters; zero value uses the
	// clip-rate defaults
	Tracker pitch.TrackerParams
}

// AnalyzeFile decodes a WAV file and analyzes its pitch contour
func AnalyzeFile(path string, opts AnalyzerOptions) (*Report, error) {
	clip, err := LoadWAV(path)
	if err != nil {
		return nil, err
	}
	return AnalyzeClip(clip, opts)
}

// AnalyzeBuffer analyzes raw in-memory PCM samples at the given rate
func AnalyzeBuffer(samples []float64, sampleRate int, opts AnalyzerOptions) (*Report, error) {
	return AnalyzeClip(&Clip{Samples: samples, SampleRate: sampleRate}, opts)
}

// AnalyzeClip runs a fresh pitch tracker over dense overlapping windows
// of the clip. Offline analysis uses tighter window spacing than the live
// path; there is no real-time budget to respect.
func AnalyzeClip(clip *Clip, opts AnalyzerOptions) (*Report, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, errors.New("empty clip")
	}
	if clip.SampleRate <= 0 {
		return nil, errors.New("invalid sample rate")
	}

	params := opts.Tracker
	if params.SampleRate == 0 {
		params = pitch.DefaultTrackerParams(clip.SampleRate)
	}
	tracker := pitch.NewTrackerWithParams(params)

	window := opts.WindowSize
	if window <= 0 {
		window = clip.SampleRate / params.WindowDivisor
		if window < params.MinWindow {
			window = params.MinWindow
		}
	}
	hop := opts.HopSize
	if hop <= 0 {
		hop = window / 2
	}

	var voiced []float64
	windows := 0
	for start := 0; start+window <= len(clip.Samples); start += hop {
		windows++
		est := tracker.Detect(clip.Samples[start : start+window])
		if est.Voiced() {
			voiced = append(voiced, est.Frequency)
		}
	}
	if windows == 0 {
		// Clip shorter than one window: analyze it whole
		windows = 1
		est := tracker.Detect(clip.Samples)
		if est.Voiced() {
			voiced = append(voiced, est.Frequency)
		}
	}

	report := &Report{
		Windows:     windows,
		DurationSec: clip.Duration(),
		VoicedRatio: float64(len(voiced)) / float64(windows),
	}
	if len(voiced) == 0 {
		return report, nil
	}

	sorted := append([]float64(nil), voiced...)
	sort.Float64s(sorted)

	mean, std := stat.MeanStdDev(voiced, nil)
	report.MeanHz = mean
	report.MedianHz = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	report.MinHz = sorted[0]
	report.MaxHz = sorted[len(sorted)-1]
	if len(voiced) > 1 {
		report.StdDevHz = std
	}
	if mean > 0 {
		cv := report.StdDevHz / mean
		report.Stability = clamp01(1 - cv)
	}

	return report, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
