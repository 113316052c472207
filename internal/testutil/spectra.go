package testutil

import (
	"math"
	"math/rand"
)

// Line is a Gaussian spectral feature. Negative depths are absorption.
type Line struct {
	Center float64 // rest wavelength, Angstrom
	Sigma  float64 // Angstrom
	Depth  float64 // relative to a unit continuum
}

// GalaxyLines is a small set of optical features (Ca H&K, G band, H-beta,
// Mg b, Na D, H-alpha) strong enough to lock a cross-correlation.
var GalaxyLines = []Line{
	{Center: 3933.7, Sigma: 4, Depth: -0.5},
	{Center: 3968.5, Sigma: 4, Depth: -0.45},
	{Center: 4304.4, Sigma: 5, Depth: -0.25},
	{Center: 4861.3, Sigma: 3, Depth: 0.6},
	{Center: 5175.4, Sigma: 6, Depth: -0.3},
	{Center: 5893.0, Sigma: 4, Depth: -0.35},
	{Center: 6562.8, Sigma: 3, Depth: 1.2},
}

// LinearAxis returns n wavelengths evenly spaced over [lo, hi].
func LinearAxis(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	return out
}

// LogAxis returns n wavelengths evenly spaced in log10 over [lo, hi], the
// sampling SDSS templates use.
func LogAxis(lo, hi float64, n int) []float64 {
	out := LinearAxis(math.Log10(lo), math.Log10(hi), n)
	for i, v := range out {
		out[i] = math.Pow(10, v)
	}
	return out
}

// LineSpectrum evaluates a unit continuum with a gentle slope plus lines
// redshifted by z at the wavelengths wl.
func LineSpectrum(wl []float64, lines []Line, z float64) []float64 {
	out := make([]float64, len(wl))
	for i, w := range wl {
		rest := w / (1 + z)
		v := 1 + 0.05*(rest-5000)/1000
		for _, l := range lines {
			d := (rest - l.Center) / l.Sigma
			v += l.Depth * math.Exp(-0.5*d*d)
		}
		out[i] = v
	}
	return out
}

// Resample linearly interpolates (xp, fp) stretched by (1+z) at x,
// clamping outside the tabulated range.
func Resample(x, xp, fp []float64, z float64) []float64 {
	out := make([]float64, len(x))
	s := 1 + z
	j := 1
	for i, xv := range x {
		switch {
		case xv <= xp[0]*s:
			out[i] = fp[0]
		case xv >= xp[len(xp)-1]*s:
			out[i] = fp[len(fp)-1]
		default:
			for xp[j]*s <= xv {
				j++
			}
			t := (xv - xp[j-1]*s) / ((xp[j] - xp[j-1]) * s)
			out[i] = fp[j-1] + t*(fp[j]-fp[j-1])
		}
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued sequence.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}
