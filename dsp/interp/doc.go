// Package interp provides monotone piecewise-linear interpolation of
// tabulated functions, used to resample one spectrum onto another's
// wavelength samples.
//
// Out-of-range queries clamp to the first or last tabulated value, the
// same convention as NumPy's interp. Callers that must not extrapolate
// restrict their queries to [xp[0], xp[len(xp)-1]] first.
package interp
