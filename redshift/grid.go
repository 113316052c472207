package redshift

import (
	"math"

	"github.com/cockroachdb/errors"
)

// ErrInvalidGrid is returned for a non-positive step, a reversed range, a
// non-finite bound or a grid with more than MaxTrials values.
var ErrInvalidGrid = errors.New("redshift: invalid redshift grid")

// MaxTrials bounds the number of trial redshifts in one grid.
const MaxTrials = 50_000_000

// Grid is an inclusive arithmetic sequence of trial redshifts.
type Grid struct {
	Start  float64
	Stop   float64
	Step   float64
	Values []float64
}

// CheckGrid validates the bounds of a grid and returns its length without
// allocating the values.
func CheckGrid(start, stop, step float64) (int, error) {
	for _, v := range []float64{start, stop, step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, errors.Mark(
				errors.Newf("redshift: non-finite grid bound (start=%g stop=%g step=%g)", start, stop, step),
				ErrInvalidGrid)
		}
	}
	if step <= 0 {
		return 0, errors.Mark(errors.Newf("redshift: grid step %g must be positive", step), ErrInvalidGrid)
	}
	if stop < start {
		return 0, errors.Mark(errors.Newf("redshift: grid stop %g is below start %g", stop, start), ErrInvalidGrid)
	}

	count := math.Floor((stop-start)/step) + 1
	if math.IsInf(count, 0) || math.IsNaN(count) || count > MaxTrials {
		return 0, errors.Mark(
			errors.Newf("redshift: grid [%g, %g] step %g has more than %d trials", start, stop, step, MaxTrials),
			ErrInvalidGrid)
	}
	return int(count), nil
}

// NewGrid returns the trial redshifts start + i*step for
// i = 0..floor((stop-start)/step). Values are computed by multiplication,
// so two grids built from the same bounds are identical.
func NewGrid(start, stop, step float64) (Grid, error) {
	n, err := CheckGrid(start, stop, step)
	if err != nil {
		return Grid{}, err
	}

	values := make([]float64, n)
	for i := range values {
		values[i] = start + float64(i)*step
	}
	return Grid{Start: start, Stop: stop, Step: step, Values: values}, nil
}

// Len returns the number of trial redshifts.
func (g Grid) Len() int {
	return len(g.Values)
}
