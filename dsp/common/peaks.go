package common

// Peak represents a detected local maximum in a curve
type Peak struct {
	Index  int     // Sample index of the peak
	Value  float64 // Curve value at the peak
	Offset float64 // Sub-sample offset from parabolic refinement
}

// PeakPicker finds local maxima subject to a relative height threshold and
// a minimum spacing between accepted peaks. Spacing enforcement keeps the
// pitch path from latching onto a sub-harmonic one bin away from the true
// period peak.
type PeakPicker struct {
	minHeight   float64 // Relative to curve maximum, 0..1
	minDistance int     // Minimum spacing between peaks in samples
}

// NewPeakPicker creates a peak picker. minHeight is relative to the curve
// maximum (0..1); minDistance is in samples.
func NewPeakPicker(minHeight float64, minDistance int) *PeakPicker {
	if minDistance < 1 {
		minDistance = 1
	}
	return &PeakPicker{
		minHeight:   Clamp01(minHeight),
		minDistance: minDistance,
	}
}

// Pick returns peaks in data sorted by descending value. When two candidate
// peaks are closer than the minimum distance the taller one wins.
func (pp *PeakPicker) Pick(data []float64) []Peak {
	if len(data) < 3 {
		return nil
	}

	maxVal := data[0]
	for _, v := range data {
		if v > maxVal {
			maxVal = v
		}
	}
	if maxVal <= 0 {
		return nil
	}
	threshold := maxVal * pp.minHeight

	var peaks []Peak
	for i := 1; i < len(data)-1; i++ {
		if data[i] <= data[i-1] || data[i] < data[i+1] || data[i] < threshold {
			continue
		}

		keep := true
		for j := len(peaks) - 1; j >= 0; j-- {
			if i-peaks[j].Index >= pp.minDistance {
				break
			}
			if data[i] > peaks[j].Value {
				peaks = append(peaks[:j], peaks[j+1:]...)
			} else {
				keep = false
				break
			}
		}

		if keep {
			peaks = append(peaks, Peak{
				Index:  i,
				Value:  data[i],
				Offset: parabolicOffset(data, i),
			})
		}
	}

	// Sort by value, descending. Peak counts here are tiny so insertion
	// sort is fine.
	for i := 1; i < len(peaks); i++ {
		for j := i; j > 0 && peaks[j].Value > peaks[j-1].Value; j-- {
			peaks[j], peaks[j-1] = peaks[j-1], peaks[j]
		}
	}

	return peaks
}

// parabolicOffset refines a peak location using its two neighbors.
// Returns the sub-sample offset in [-0.5, 0.5].
func parabolicOffset(data []float64, idx int) float64 {
	if idx <= 0 || idx >= len(data)-1 {
		return 0
	}

	y1 := data[idx-1]
	y2 := data[idx]
	y3 := data[idx+1]

	denom := y1 - 2*y2 + y3
	if denom == 0 {
		return 0
	}

	offset := 0.5 * (y1 - y3) / denom
	return Clamp(offset, -0.5, 0.5)
}
