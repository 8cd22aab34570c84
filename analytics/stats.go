package analytics

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of xs, or 0 for empty input.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the sample standard deviation of xs using Bessel's
// correction. With fewer than two samples the variance cannot be
// estimated, so 0 is returned.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := Mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(xs)-1))
}

// ZScore returns how many standard deviations value sits from the mean
// of xs. A constant series has no deviation signal, so a zero stddev
// yields 0 rather than a division by zero.
func ZScore(value float64, xs []float64) float64 {
	sd := StdDev(xs)
	if sd == 0 {
		return 0
	}
	return (value - Mean(xs)) / sd
}

// Percentile returns the p-th percentile of xs using the nearest-rank
// method with a ceiling index: sort ascending, take
// ceil(p/100*n)-1 clamped to [0, n-1]. Not linear-interpolated.
// Returns 0 for empty input.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)

	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(sorted)-1 {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
