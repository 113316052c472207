package conv

import "errors"

// Errors returned by convolution functions.
var (
	ErrEmptyInput     = errors.New("conv: empty input")
	ErrEmptyKernel    = errors.New("conv: empty kernel")
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")
)

// Mode specifies the output mode for convolution.
type Mode int

const (
	// ModeFull returns the full convolution result with length len(a)+len(b)-1.
	ModeFull Mode = iota

	// ModeSame returns output with the same length as the first input.
	ModeSame

	// ModeValid returns only the portion where signals fully overlap,
	// with length max(len(a), len(b)) - min(len(a), len(b)) + 1.
	ModeValid
)

// directThreshold is the kernel length up to which Convolve stays in the
// time domain.
const directThreshold = 64

// Direct performs direct time-domain linear convolution of a and b.
// Returns a new slice of length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	result := make([]float64, len(a)+len(b)-1)
	DirectTo(result, a, b)
	return result, nil
}

// DirectTo performs direct convolution into dst, which must have length
// len(a) + len(b) - 1.
func DirectTo(dst, a, b []float64) {
	for i := range dst {
		dst[i] = 0
	}
	for i, av := range a {
		row := dst[i : i+len(b)]
		for j, bv := range b {
			row[j] += av * bv
		}
	}
}

// Convolve performs linear convolution with automatic algorithm selection:
// direct for kernels up to 64 samples, FFT overlap-add beyond that.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	// Keep a as the longer signal.
	if len(b) > len(a) {
		a, b = b, a
	}

	if len(b) <= directThreshold {
		return Direct(a, b)
	}
	return FFTConvolve(a, b)
}

// ConvolveMode performs convolution with the specified output mode.
// The output of ModeSame is centred like NumPy's convolve(a, b, "same").
func ConvolveMode(a, b []float64, mode Mode) ([]float64, error) {
	full, err := Convolve(a, b)
	if err != nil {
		return nil, err
	}
	return trimToMode(full, len(a), len(b), mode), nil
}

// trimToMode extracts the requested portion of a full convolution result.
func trimToMode(full []float64, lenA, lenB int, mode Mode) []float64 {
	switch mode {
	case ModeSame:
		// NumPy centres "same" output on the longer input.
		if lenA >= lenB {
			start := (lenB - 1) / 2
			return full[start : start+lenA]
		}
		start := (lenA - 1) / 2
		return full[start : start+lenB]
	case ModeValid:
		if lenA >= lenB {
			return full[lenB-1 : lenA]
		}
		return full[lenA-1 : lenB]
	default:
		return full
	}
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
