package buffer

// Buffer is a reusable float64 slice. Its contents after Resize are
// unspecified; callers overwrite every sample they read.
type Buffer struct {
	samples []float64
}

// New returns a Buffer of the given length.
func New(length int) *Buffer {
	return &Buffer{samples: make([]float64, max(length, 0))}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Resize sets the length to n, reusing capacity when possible, and returns
// the resized slice.
func (b *Buffer) Resize(n int) []float64 {
	n = max(n, 0)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		b.samples = make([]float64, n)
	}
	return b.samples
}

// CopyFrom resizes b to len(src) and copies src into it.
func (b *Buffer) CopyFrom(src []float64) []float64 {
	copy(b.Resize(len(src)), src)
	return b.samples
}
