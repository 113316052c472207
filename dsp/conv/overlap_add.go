package conv

import (
	"github.com/cockroachdb/errors"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// minBlock is the smallest signal block handed to one transform.
const minBlock = 256

// FFTConvolver convolves real signals with a fixed real kernel by FFT
// overlap-add. The kernel spectrum is computed once.
//
// Because the kernel is real, two signal blocks share each complex
// transform: one in the real part and one in the imaginary part. Their
// convolutions come back separated in the same way.
//
// An FFTConvolver is not safe for concurrent use.
type FFTConvolver struct {
	kernel   []complex128
	taps     int
	block    int
	plan     *algofft.Plan[complex128]
	workArea []complex128
}

// NewFFTConvolver prepares a convolver for kernel. block is the number of
// signal samples per transform half; 0 picks a power of two no smaller
// than the kernel and at least 256.
func NewFFTConvolver(kernel []float64, block int) (*FFTConvolver, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	if block <= 0 {
		block = max(nextPowerOf2(len(kernel)), minBlock)
	}

	size := nextPowerOf2(block + len(kernel) - 1)
	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, errors.Wrapf(err, "conv: FFT plan of size %d", size)
	}

	spec := make([]complex128, size)
	for i, k := range kernel {
		spec[i] = complex(k, 0)
	}
	if err := plan.Forward(spec, spec); err != nil {
		return nil, errors.Wrap(err, "conv: kernel transform")
	}

	return &FFTConvolver{
		kernel:   spec,
		taps:     len(kernel),
		block:    block,
		plan:     plan,
		workArea: make([]complex128, size),
	}, nil
}

// Size returns the transform length.
func (c *FFTConvolver) Size() int {
	return len(c.kernel)
}

// Convolve returns the full linear convolution of signal with the kernel,
// of length len(signal)+taps-1.
func (c *FFTConvolver) Convolve(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]float64, len(signal)+c.taps-1)
	for re := 0; re < len(signal); re += 2 * c.block {
		im := re + c.block
		reBlock := signal[re:min(re+c.block, len(signal))]
		var imBlock []float64
		if im < len(signal) {
			imBlock = signal[im:min(im+c.block, len(signal))]
		}

		w := c.workArea
		clear(w)
		for i, v := range reBlock {
			w[i] = complex(v, 0)
		}
		for i, v := range imBlock {
			w[i] += complex(0, v)
		}

		if err := c.plan.Forward(w, w); err != nil {
			return nil, errors.Wrap(err, "conv: forward transform")
		}
		for i := range w {
			w[i] *= c.kernel[i]
		}
		if err := c.plan.Inverse(w, w); err != nil {
			return nil, errors.Wrap(err, "conv: inverse transform")
		}

		for i := 0; i < len(reBlock)+c.taps-1; i++ {
			out[re+i] += real(w[i])
		}
		for i := 0; len(imBlock) > 0 && i < len(imBlock)+c.taps-1; i++ {
			out[im+i] += imag(w[i])
		}
	}
	return out, nil
}

// FFTConvolve is a one-shot FFTConvolver.
func FFTConvolve(signal, kernel []float64) ([]float64, error) {
	c, err := NewFFTConvolver(kernel, 0)
	if err != nil {
		return nil, err
	}
	return c.Convolve(signal)
}
