// Package stats provides the small set of rolling statistics the market
// simulation needs: sample mean/std, rolling windows over price history,
// and trailing averages over volume history.
package stats

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Mean returns the sample mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// Std returns the sample standard deviation of xs (denominator n-1).
// Returns 0 for fewer than two samples.
func Std(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)-1))
}

// PopStd returns the population standard deviation of xs (denominator n).
// Used for rolling price-volatility windows, where every point of the
// window is the whole population.
func PopStd(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := Mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

// RollingStd computes the population std over each window of size w ending
// at indices w-1..len(xs)-1. Returns nil if xs is shorter than w.
func RollingStd(xs []float64, w int) []float64 {
	if w < 1 || len(xs) < w {
		return nil
	}
	out := make([]float64, 0, len(xs)-w+1)
	for i := 0; i+w <= len(xs); i++ {
		out = append(out, PopStd(xs[i:i+w]))
	}
	return out
}

// TrailingMean averages the last n elements of xs ending at index end
// (inclusive). Fewer than n elements are available near the start; the
// average then covers what exists.
func TrailingMean(xs []float64, end, n int) float64 {
	if end < 0 || end >= len(xs) || n < 1 {
		return 0
	}
	lo := end - n + 1
	if lo < 0 {
		lo = 0
	}
	return Mean(xs[lo : end+1])
}

// Max returns the largest element of xs, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
