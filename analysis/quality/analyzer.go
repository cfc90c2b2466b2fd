package quality

import (
	"math"

	"github.com/halcyonlabs/voxtrain/dsp/common"
	"github.com/halcyonlabs/voxtrain/dsp/spectral"
)

// Metrics contains per-invocation voice quality measurements.
// Each value is clamped to a physiologically plausible range; the zero
// value is the neutral "could not measure" result.
type Metrics struct {
	JitterPercent  float64 `json:"jitter_percent"`  // Cycle-to-cycle period variation, 0..8
	ShimmerPercent float64 `json:"shimmer_percent"` // Cycle-to-cycle amplitude variation, 0..15
	HNRdB          float64 `json:"hnr_db"`          // Harmonics-to-noise ratio, -5..35
	StrainDetected bool    `json:"strain_detected"`
}

// LightMetrics is the cheap continuous-monitoring companion of Metrics
type LightMetrics struct {
	HNRdB   float64 `json:"hnr_db"`
	Quality float64 `json:"quality"` // 0..1, derived from HNR
}

// AnalyzerParams configures voice quality analysis
type AnalyzerParams struct {
	SampleRate int `json:"sample_rate"`

	// Peak picking for period extraction
	PeakDistanceRatio float64 `json:"peak_distance_ratio"` // Of expected period
	PeakRMSFactor     float64 `json:"peak_rms_factor"`     // Amplitude threshold vs RMS

	// Outlier rejection
	PeriodTolerance float64 `json:"period_tolerance"` // Fraction of expected period
	AmplitudeBand   float64 `json:"amplitude_band"`   // Fraction of median amplitude
	MinRawPeaks     int     `json:"min_raw_peaks"`
	MinCleanPeriods int     `json:"min_clean_periods"`

	// Clamps. Live, non-studio conditions produce noisier raw numbers than
	// clinical lab recordings, so the strain thresholds below are looser
	// than clinical norms.
	JitterCeiling  float64 `json:"jitter_ceiling"`
	ShimmerCeiling float64 `json:"shimmer_ceiling"`
	HNRFloor       float64 `json:"hnr_floor"`
	HNRCeiling     float64 `json:"hnr_ceiling"`

	// Strain thresholds
	StrainJitter  float64 `json:"strain_jitter"`
	StrainShimmer float64 `json:"strain_shimmer"`
	StrainHNR     float64 `json:"strain_hnr"`

	// HNR search tolerance around the expected lag, in samples
	HNRLagTolerance int `json:"hnr_lag_tolerance"`

	// Spectral scoring
	SegmentLength    int     `json:"segment_length"`
	BreathinessScale float64 `json:"breathiness_scale"`
	NasalLowHz       float64 `json:"nasal_low_hz"`
	NasalHighHz      float64 `json:"nasal_high_hz"`
	ReferenceBandHz  float64 `json:"reference_band_hz"` // Formant bandwidth reference
}

// DefaultAnalyzerParams returns live-session defaults
func DefaultAnalyzerParams(sampleRate int) AnalyzerParams {
	return AnalyzerParams{
		SampleRate:        sampleRate,
		PeakDistanceRatio: 0.85,
		PeakRMSFactor:     1.2,
		PeriodTolerance:   0.30,
		AmplitudeBand:     0.60,
		MinRawPeaks:       5,
		MinCleanPeriods:   3,
		JitterCeiling:     8.0,
		ShimmerCeiling:    15.0,
		HNRFloor:          -5.0,
		HNRCeiling:        35.0,
		StrainJitter:      1.5,
		StrainShimmer:     7.0,
		StrainHNR:         12.0,
		HNRLagTolerance:   3,
		SegmentLength:     1024,
		BreathinessScale:  0.5,
		NasalLowHz:        250.0,
		NasalHighHz:       2500.0,
		ReferenceBandHz:   120.0,
	}
}

// Analyzer measures jitter, shimmer, HNR, breathiness, and nasality.
// These are the most CPU-expensive per-chunk analyses in the pipeline, so
// the session invokes Roughness on demand rather than every chunk, with
// LightweightRoughness as the continuous companion.
//
// References:
//   - Teixeira, J.P., Oliveira, C., Lopes, C. (2013). "Vocal Acoustic
//     Analysis - Jitter, Shimmer and HNR Parameters"
//   - Boersma, P. (1993). "Accurate short-term analysis of the fundamental
//     frequency and the harmonics-to-noise ratio of a sampled sound"
//
// Every method is total: malformed, too-short, or unvoiced input yields the
// neutral zero result, never an error.
type Analyzer struct {
	params AnalyzerParams
	welch  *spectral.Welch
}

// NewAnalyzer creates a voice quality analyzer with defaults
func NewAnalyzer(sampleRate int) *Analyzer {
	return NewAnalyzerWithParams(DefaultAnalyzerParams(sampleRate))
}

// NewAnalyzerWithParams creates an analyzer with custom parameters
func NewAnalyzerWithParams(params AnalyzerParams) *Analyzer {
	return &Analyzer{
		params: params,
		welch:  spectral.NewWelch(params.SegmentLength),
	}
}

// Params returns the current parameters
func (a *Analyzer) Params() AnalyzerParams {
	return a.params
}

// Roughness measures jitter, shimmer, and HNR for a chunk with a known
// pitch. Only meaningful for voiced input: pitch <= 0 returns the neutral
// zero result.
func (a *Analyzer) Roughness(chunk []float64, pitch float64) Metrics {
	if pitch <= 0 || len(chunk) == 0 {
		return Metrics{}
	}

	expectedPeriod := float64(a.params.SampleRate) / pitch
	if expectedPeriod < 2 || expectedPeriod > float64(len(chunk))/2 {
		return Metrics{}
	}

	peaks := a.findPeriodPeaks(chunk, expectedPeriod)

	jitter, shimmer := a.perturbation(chunk, peaks, expectedPeriod)
	hnr := a.hnr(chunk, expectedPeriod)

	strain := jitter > a.params.StrainJitter ||
		shimmer > a.params.StrainShimmer ||
		hnr < a.params.StrainHNR

	return Metrics{
		JitterPercent:  jitter,
		ShimmerPercent: shimmer,
		HNRdB:          hnr,
		StrainDetected: strain,
	}
}

// LightweightRoughness computes HNR only, cheap enough for continuous
// monitoring between full Roughness invocations.
func (a *Analyzer) LightweightRoughness(chunk []float64, pitch float64) LightMetrics {
	if pitch <= 0 || len(chunk) == 0 {
		return LightMetrics{}
	}

	expectedPeriod := float64(a.params.SampleRate) / pitch
	if expectedPeriod < 2 || expectedPeriod > float64(len(chunk))/2 {
		return LightMetrics{}
	}

	hnr := a.hnr(chunk, expectedPeriod)
	return LightMetrics{
		HNRdB:   hnr,
		Quality: common.Clamp01(hnr / 25.0),
	}
}

// findPeriodPeaks locates amplitude peaks spaced approximately one pitch
// period apart. The amplitude threshold adapts to signal RMS so soft but
// clean voicing is still measurable.
func (a *Analyzer) findPeriodPeaks(chunk []float64, expectedPeriod float64) []int {
	minDist := int(expectedPeriod * a.params.PeakDistanceRatio)
	if minDist < 1 {
		minDist = 1
	}

	rms := common.RMS(chunk)
	threshold := rms * a.params.PeakRMSFactor

	var peaks []int
	for i := 1; i < len(chunk)-1; i++ {
		v := chunk[i]
		if v < threshold || v <= chunk[i-1] || v < chunk[i+1] {
			continue
		}

		if n := len(peaks); n > 0 && i-peaks[n-1] < minDist {
			if v > chunk[peaks[n-1]] {
				peaks[n-1] = i
			}
			continue
		}
		peaks = append(peaks, i)
	}

	return peaks
}

// perturbation computes jitter and shimmer from detected peaks. Periods
// deviating more than the tolerance from the expected period are rejected
// as transient-noise outliers before the statistics.
func (a *Analyzer) perturbation(chunk []float64, peaks []int, expectedPeriod float64) (jitter, shimmer float64) {
	if len(peaks) < a.params.MinRawPeaks {
		return 0, 0
	}

	var periods []float64
	for i := 1; i < len(peaks); i++ {
		p := float64(peaks[i] - peaks[i-1])
		if math.Abs(p-expectedPeriod) <= a.params.PeriodTolerance*expectedPeriod {
			periods = append(periods, p)
		}
	}
	if len(periods) >= a.params.MinCleanPeriods {
		mean := common.Mean(periods)
		if mean > 0 {
			jitter = common.StandardDeviation(periods) / mean * 100.0
			jitter = common.Clamp(jitter, 0, a.params.JitterCeiling)
		}
	}

	amplitudes := make([]float64, len(peaks))
	for i, idx := range peaks {
		amplitudes[i] = chunk[idx]
	}
	median := common.Median(amplitudes)
	var clean []float64
	for _, amp := range amplitudes {
		if median > 0 && math.Abs(amp-median) <= a.params.AmplitudeBand*median {
			clean = append(clean, amp)
		}
	}
	if len(clean) >= a.params.MinCleanPeriods {
		mean := common.Mean(clean)
		if mean > 0 {
			shimmer = common.StandardDeviation(clean) / mean * 100.0
			shimmer = common.Clamp(shimmer, 0, a.params.ShimmerCeiling)
		}
	}

	return jitter, shimmer
}

// hnr computes the harmonics-to-noise ratio in dB via non-normalized
// autocorrelation, searching a small tolerance around the expected lag to
// allow for jitter.
func (a *Analyzer) hnr(chunk []float64, expectedPeriod float64) float64 {
	n := len(chunk)
	lag := int(math.Round(expectedPeriod))
	if lag+a.params.HNRLagTolerance >= n {
		return 0
	}

	r0 := 0.0
	for _, v := range chunk {
		r0 += v * v
	}
	r0 /= float64(n)
	if r0 < 1e-12 {
		return 0
	}

	rT := 0.0
	for l := lag - a.params.HNRLagTolerance; l <= lag+a.params.HNRLagTolerance; l++ {
		if l < 1 || l >= n {
			continue
		}
		sum := 0.0
		for i := 0; i < n-l; i++ {
			sum += chunk[i] * chunk[i+l]
		}
		if r := sum / float64(n-l); r > rT {
			rT = r
		}
	}

	if rT <= 0 {
		return common.Clamp(0, a.params.HNRFloor, a.params.HNRCeiling)
	}

	noise := r0 - rT
	if noise <= r0*1e-4 {
		// Near-perfect periodicity; the log ratio is numerically
		// meaningless up here.
		return a.params.HNRCeiling
	}

	hnr := 10 * math.Log10(rT/noise)
	return common.Clamp(hnr, a.params.HNRFloor, a.params.HNRCeiling)
}

// Breathiness scores high-band noise energy against mid-band harmonic
// energy, normalized by an empirical scale. 0 is clean, 1 is fully breathy.
func (a *Analyzer) Breathiness(chunk []float64) float64 {
	if len(chunk) == 0 {
		return 0
	}

	psd := a.welch.Compute(chunk, a.params.SampleRate)
	bands := spectral.NewBandEnergy()

	ratio := bands.Ratio(psd, 3000, 8000, 100, 1500)
	return common.Clamp01(ratio / a.params.BreathinessScale)
}

// Nasality scores spectral cues of nasal resonance: a low peak near the
// nasal murmur (~250 Hz), a peak near the nasal pole region (~2500 Hz),
// and widened formant bandwidths. Additive, clamped to [0, 1].
func (a *Analyzer) Nasality(chunk []float64) float64 {
	if len(chunk) == 0 {
		return 0
	}

	psd := a.welch.Compute(chunk, a.params.SampleRate)
	if len(psd.Power) == 0 {
		return 0
	}

	curve := make([]float64, len(psd.Power))
	copy(curve, psd.Power)
	curve[0] = 0

	picker := common.NewPeakPicker(0.05, int(100/psd.BinWidth))
	peaks := picker.Pick(curve)
	if len(peaks) == 0 {
		return 0
	}

	score := 0.0
	if hasPeakNear(peaks, psd.BinWidth, a.params.NasalLowHz, 75) {
		score += 0.35
	}
	if hasPeakNear(peaks, psd.BinWidth, a.params.NasalHighHz, 400) {
		score += 0.35
	}

	if avg := a.averageBandwidth(curve, peaks, psd.BinWidth); avg > a.params.ReferenceBandHz {
		score += 0.3 * common.Clamp01(avg/a.params.ReferenceBandHz-1)
	}

	return common.Clamp01(score)
}

func hasPeakNear(peaks []common.Peak, binWidth, target, tolerance float64) bool {
	for _, p := range peaks {
		freq := float64(p.Index) * binWidth
		if math.Abs(freq-target) <= tolerance {
			return true
		}
	}
	return false
}

// averageBandwidth measures the mean -3 dB bandwidth of the strongest
// peaks (up to three)
func (a *Analyzer) averageBandwidth(curve []float64, peaks []common.Peak, binWidth float64) float64 {
	count := len(peaks)
	if count > 3 {
		count = 3
	}

	total := 0.0
	measured := 0
	for _, p := range peaks[:count] {
		half := p.Value / 2

		lo := p.Index
		for lo > 0 && curve[lo] > half {
			lo--
		}
		hi := p.Index
		for hi < len(curve)-1 && curve[hi] > half {
			hi++
		}

		total += float64(hi-lo) * binWidth
		measured++
	}

	if measured == 0 {
		return 0
	}
	return total / float64(measured)
}
