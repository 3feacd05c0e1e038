package staffing

import (
	"math"
	"slices"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median finds the median value in a slice of floats.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Quantile computes the q-th quantile with linear interpolation between
// order statistics, matching the convention spreadsheet tools use.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}

	// Work on a copy to avoid mutating the original
	temp := make([]float64, len(values))
	copy(temp, values)
	slices.Sort(temp)

	if q <= 0 {
		return temp[0]
	}
	if q >= 1 {
		return temp[len(temp)-1]
	}

	pos := float64(len(temp)-1) * q
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return temp[lower]
	}
	frac := pos - float64(lower)
	return temp[lower]*(1-frac) + temp[upper]*frac
}

// Round2 rounds to 2 decimal places for reporting values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round4 rounds to 4 decimal places for ratios and productivity values.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
