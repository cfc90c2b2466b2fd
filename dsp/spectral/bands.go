package spectral

// BandEnergy computes energy within frequency bands of a PSD estimate.
// Used for breathiness (high-band vs harmonic-band energy) and nasality
// (fixed-landmark peak checks) scoring.
type BandEnergy struct{}

// NewBandEnergy creates a new band energy calculator
func NewBandEnergy() *BandEnergy {
	return &BandEnergy{}
}

// Compute sums PSD power over [minFreq, maxFreq]. Bands that fall outside
// the estimate yield 0.
func (be *BandEnergy) Compute(psd *PSDResult, minFreq, maxFreq float64) float64 {
	if psd == nil || len(psd.Power) == 0 || psd.BinWidth <= 0 {
		return 0
	}

	minBin := int(minFreq / psd.BinWidth)
	maxBin := int(maxFreq / psd.BinWidth)
	if minBin < 0 {
		minBin = 0
	}
	if maxBin >= len(psd.Power) {
		maxBin = len(psd.Power) - 1
	}

	energy := 0.0
	for i := minBin; i <= maxBin; i++ {
		energy += psd.Power[i]
	}
	return energy
}

// Ratio returns the energy ratio between two bands, guarding against a
// silent denominator band. Silent denominator yields 0.
func (be *BandEnergy) Ratio(psd *PSDResult, numMin, numMax, denMin, denMax float64) float64 {
	den := be.Compute(psd, denMin, denMax)
	if den < 1e-12 {
		return 0
	}
	return be.Compute(psd, numMin, numMax) / den
}
