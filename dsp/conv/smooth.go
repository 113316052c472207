package conv

// Boxcar convolves x with a run of width ones and returns the centred
// result of the same length as x. The kernel is not normalized, matching
// np.convolve(x, np.ones(width), "same").
func Boxcar(x []float64, width int) ([]float64, error) {
	if width <= 0 {
		return nil, ErrEmptyKernel
	}
	kernel := make([]float64, width)
	for i := range kernel {
		kernel[i] = 1
	}
	return ConvolveMode(x, kernel, ModeSame)
}
