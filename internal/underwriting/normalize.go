package underwriting

import "math"

// Normalize maps value from the reference range [min, max] onto [0, 1].
//
// The value is first soft-clipped to [min*0.5, max*1.5] so readings just outside
// the reference range still get partial credit, then mapped linearly and clamped.
// Non-finite values and empty ranges score 0.
func Normalize(value, min, max float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) || !(max > min) {
		return 0
	}
	v := clamp(value, min*0.5, max*1.5)
	return clamp01((v - min) / (max - min))
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

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// finite replaces NaN and ±Inf with 0.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// positive returns v when it is finite and > 0, else 0.
func positive(v float64) float64 {
	if v > 0 && !math.IsInf(v, 1) {
		return v
	}
	return 0
}
