// Package stats provides summary statistics for sampled spectra.
//
// The moment accumulation follows Welford's online algorithm so that
// summaries of long, high-count spectra stay numerically stable.
package stats

import "math"

// Summary holds descriptive statistics of a sample sequence.
type Summary struct {
	Length   int
	Mean     float64
	Median   float64
	RMS      float64
	Min      float64
	MinPos   int
	Max      float64
	MaxPos   int
	Variance float64 // population variance
	StdDev   float64
	Skewness float64
	Kurtosis float64 // excess kurtosis
}

// Describe computes all statistics of x in a single Welford pass plus a
// sort for the median. NaN values are not filtered.
func Describe(x []float64) Summary {
	n := len(x)
	if n == 0 {
		return Summary{}
	}

	var (
		mean, m2, m3, m4 float64
		sumSq            float64
		maxVal           = x[0]
		maxPos           int
		minVal           = x[0]
		minPos           int
	)

	for i, v := range x {
		ni := float64(i + 1)
		delta := v - mean
		deltaN := delta / ni
		deltaN2 := deltaN * deltaN
		term1 := delta * deltaN * float64(i)

		// M4 before M3 before M2.
		m4 += term1*deltaN2*(ni*ni-3*ni+3) + 6*deltaN2*m2 - 4*deltaN*m3
		m3 += term1*deltaN*(float64(i)-1) - 3*deltaN*m2
		m2 += term1
		mean += deltaN

		sumSq += v * v

		if v > maxVal {
			maxVal = v
			maxPos = i
		}
		if v < minVal {
			minVal = v
			minPos = i
		}
	}

	nf := float64(n)
	variance := m2 / nf

	var skewness, kurtosis float64
	if variance > 0 {
		skewness = (m3 / nf) / (variance * math.Sqrt(variance))
		kurtosis = (m4/nf)/(variance*variance) - 3
	}

	return Summary{
		Length:   n,
		Mean:     mean,
		Median:   Median(x),
		RMS:      math.Sqrt(sumSq / nf),
		Min:      minVal,
		MinPos:   minPos,
		Max:      maxVal,
		MaxPos:   maxPos,
		Variance: variance,
		StdDev:   math.Sqrt(variance),
		Skewness: skewness,
		Kurtosis: kurtosis,
	}
}

// Mean returns the arithmetic mean of x using Kahan summation.
// Returns 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return Sum(x) / float64(len(x))
}

// Sum returns the compensated (Kahan) sum of x.
func Sum(x []float64) float64 {
	var sum, c float64
	for _, v := range x {
		y := v - c
		t := sum + y
		c = (t - sum) - y
		sum = t
	}
	return sum
}

// Variance returns the population variance of x.
func Variance(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var mean, m2 float64
	for i, v := range x {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	return m2 / float64(len(x))
}

// RMS returns the root-mean-square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	var sumSq float64
	for _, v := range x {
		sumSq += v * v
	}
	return math.Sqrt(sumSq / float64(len(x)))
}
