package stats

import "sort"

// Median returns the median of x without modifying it.
// Even-length inputs return the mean of the two central values.
func Median(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	s := make([]float64, n)
	copy(s, x)
	sort.Float64s(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return 0.5 * (s[n/2-1] + s[n/2])
}

// SignalToNoise returns the median of flux[i]/unc[i] over samples with a
// positive uncertainty. It returns 0 when no such sample exists or the
// slices differ in length.
func SignalToNoise(flux, unc []float64) float64 {
	if len(flux) != len(unc) {
		return 0
	}
	ratios := make([]float64, 0, len(flux))
	for i, u := range unc {
		if u > 0 {
			ratios = append(ratios, flux[i]/u)
		}
	}
	return Median(ratios)
}
