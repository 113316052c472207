package interp

import "sort"

// At evaluates the piecewise-linear function through (xp, fp) at x.
// xp must be strictly increasing and len(fp) >= len(xp).
// Returns 0 when xp is empty.
func At(x float64, xp, fp []float64) float64 {
	n := len(xp)
	if n == 0 {
		return 0
	}
	if x <= xp[0] {
		return fp[0]
	}
	if x >= xp[n-1] {
		return fp[n-1]
	}
	// First index with xp[j] > x; j is in [1, n-1].
	j := sort.Search(n, func(i int) bool { return xp[i] > x })
	return Linear2((x-xp[j-1])/(xp[j]-xp[j-1]), fp[j-1], fp[j])
}

// Linear evaluates the piecewise-linear function through (xp, fp) at every
// point of x and returns a new slice.
func Linear(x, xp, fp []float64) []float64 {
	out := make([]float64, len(x))
	ScaledTo(out, x, xp, fp, 1)
	return out
}

// ScaledTo writes f(x[i]/scale) into dst for every i, where f is the
// piecewise-linear function through (xp, fp). Evaluating at x/scale is
// the same as interpolating on the stretched axis scale*xp.
//
// x must be non-decreasing; the lookup walks xp forward once, so the cost
// is O(len(x) + len(xp)). dst must have length len(x) and scale must be
// positive.
func ScaledTo(dst, x, xp, fp []float64, scale float64) {
	n := len(xp)
	if n == 0 {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	j := 1
	for i, xv := range x {
		q := xv / scale
		switch {
		case q <= xp[0]:
			dst[i] = fp[0]
		case q >= xp[n-1]:
			dst[i] = fp[n-1]
		default:
			for xp[j] <= q {
				j++
			}
			dst[i] = Linear2((q-xp[j-1])/(xp[j]-xp[j-1]), fp[j-1], fp[j])
		}
	}
}

// Linear2 computes 2-point linear interpolation between x0 and x1 at t in [0,1].
func Linear2(t, x0, x1 float64) float64 {
	return x0 + t*(x1-x0)
}
