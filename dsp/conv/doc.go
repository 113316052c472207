// Package conv provides linear convolution and peak search used by the
// redshift tooling.
//
// Short kernels, such as the boxcar used to smooth an observed spectrum
// for display, are convolved directly. Kernels longer than 64 samples go
// through FFT-based overlap-add ([FFTConvolver]):
//
//	smoothed, err := conv.Boxcar(flux, 10)           // np.convolve(flux, ones(10), "same")
//	full, err := conv.Convolve(signal, kernel)        // auto-selects the algorithm
//	same, err := conv.ConvolveMode(signal, kernel, conv.ModeSame)
//
// [FindPeak] returns the first index of the maximum of a score sequence,
// which is the argmax convention the redshift search relies on.
package conv
