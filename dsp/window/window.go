// Package window generates taper windows applied to spectrum segments
// before they are cross-correlated.
//
// Tapering the ends of an overlap segment suppresses the edge
// discontinuity that otherwise dominates the correlation of short
// overlaps. Windows are evaluated on the symmetric unit interval, so the
// first and last coefficients of the cosine family are zero.
package window

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
	TypeTukey
	TypeWelch
	TypeCosine
)

var typeNames = map[Type]string{
	TypeRectangular: "rectangular",
	TypeHann:        "hann",
	TypeHamming:     "hamming",
	TypeBlackman:    "blackman",
	TypeTukey:       "tukey",
	TypeWelch:       "welch",
	TypeCosine:      "cosine",
}

var (
	hannCoeffs     = []float64{0.5, -0.5}
	hammingCoeffs  = []float64{0.54, -0.46}
	blackmanCoeffs = []float64{0.42, -0.5, 0.08}
)

// String returns the lower-case window name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType resolves a window name (case-insensitive) to its Type.
// The empty string resolves to TypeRectangular.
func ParseType(name string) (Type, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return TypeRectangular, nil
	}
	for t, n := range typeNames {
		if n == name {
			return t, nil
		}
	}
	return TypeRectangular, fmt.Errorf("%w: %q", errUnknownType, name)
}

// Option configures window generation.
type Option func(*config)

type config struct {
	alpha float64
}

func defaultConfig() config {
	return config{alpha: 0.5}
}

// WithAlpha sets the taper fraction of a Tukey window. Values outside
// [0,1] are ignored.
func WithAlpha(v float64) Option {
	return func(c *config) {
		if v >= 0 && v <= 1 {
			c.alpha = v
		}
	}
}

// Generate returns window coefficients of the given length.
// A non-positive length yields nil; a length of one yields {1}.
func Generate(t Type, length int, opts ...Option) []float64 {
	if length <= 0 {
		return nil
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}
	for i := range out {
		out[i] = evalWindow(t, float64(i)/float64(length-1), cfg)
	}
	return out
}

// ApplyInPlace multiplies buf by the selected window. Rectangular windows
// leave buf untouched.
func ApplyInPlace(t Type, buf []float64, opts ...Option) {
	if len(buf) == 0 || t == TypeRectangular {
		return
	}
	vecmath.MulBlockInPlace(buf, Generate(t, len(buf), opts...))
}

// ApplyCoefficientsInPlace multiplies samples by precomputed coefficients.
func ApplyCoefficientsInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return errMismatchedLength
	}
	vecmath.MulBlockInPlace(samples, coeffs)
	return nil
}

func evalWindow(t Type, x float64, cfg config) float64 {
	switch t {
	case TypeRectangular:
		return 1
	case TypeHann:
		return cosineFromCoeffs(x, hannCoeffs)
	case TypeHamming:
		return cosineFromCoeffs(x, hammingCoeffs)
	case TypeBlackman:
		return cosineFromCoeffs(x, blackmanCoeffs)
	case TypeTukey:
		return tukeyAt(x, cfg.alpha)
	case TypeWelch:
		d := x - 0.5
		return 1 - 4*d*d
	case TypeCosine:
		return math.Sin(math.Pi * x)
	default:
		return 1
	}
}

func cosineFromCoeffs(x float64, coeffs []float64) float64 {
	phase := 2 * math.Pi * x

	sum := 0.0
	for k, c := range coeffs {
		sum += c * math.Cos(float64(k)*phase)
	}
	return sum
}

func tukeyAt(x, alpha float64) float64 {
	if alpha <= 0 {
		return 1
	}
	if alpha >= 1 {
		return cosineFromCoeffs(x, hannCoeffs)
	}

	a := alpha / 2
	switch {
	case x < a:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-1)))
	case x <= 1-a:
		return 1
	default:
		return 0.5 * (1 + math.Cos(math.Pi*(2*x/alpha-2/alpha+1)))
	}
}
