package utils

import "math"

// Round4 rounds a score to 4 decimal places (half away from zero).
func Round4(v float64) float64 {
	return RoundAt(v, 4)
}

// RoundAt rounds v to the given number of decimal places.
// Non-finite values round to 0 so they never propagate into scoring.
func RoundAt(v float64, precision int) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	scale := math.Pow(10, float64(precision))
	r := math.Round(v*scale) / scale
	if r == 0 {
		return 0 // avoid -0
	}
	return r
}

// Clamp01 clamps v into [0, 1]. Non-finite values clamp to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Score clamps v into [0, 1] and rounds to 4 decimal places.
func Score(v float64) float64 {
	return Round4(Clamp01(v))
}

// NormalizeL2 normalizes the slice in place to unit L2 norm.
// If the norm is zero, the slice is unchanged.
func NormalizeL2(x []float64) {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	if sum == 0 {
		return
	}
	norm := 1.0 / math.Sqrt(sum)
	for i := range x {
		x[i] *= norm
	}
}
