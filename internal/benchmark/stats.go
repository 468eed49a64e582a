package benchmark

import (
	"math"
	"sort"
)

// summarize computes the benchmark statistics for one ratio's sample set.
// Percentiles use linear interpolation between order statistics; std is the
// sample standard deviation. The caller guarantees len(values) > 0.
func summarize(values []float64) (mean, median, p25, p75, std float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean = sum / float64(len(sorted))

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}
	if len(sorted) > 1 {
		std = math.Sqrt(sq / float64(len(sorted)-1))
	}

	median = quantile(sorted, 0.5)
	p25 = quantile(sorted, 0.25)
	p75 = quantile(sorted, 0.75)
	return mean, median, p25, p75, std
}

// quantile interpolates linearly between the order statistics of a sorted
// slice, the same convention the upstream dashboards assume.
func quantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 1 {
		return sorted[0]
	}
	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
