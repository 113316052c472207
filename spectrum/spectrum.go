// Package spectrum holds the canonical in-memory form of a 1-D spectrum
// and the readers that produce it from text and FITS files.
//
// A Spectrum is immutable by convention: readers build it once through
// New, and every consumer (templates, the redshift engine, the reporter)
// only reads it.
package spectrum

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Spectrum is a sampled 1-D spectrum.
type Spectrum struct {
	// Wavelength is strictly increasing and positive, in Angstrom.
	Wavelength []float64
	// Flux has one sample per wavelength, in arbitrary but consistent units.
	Flux []float64
	// Uncertainty is nil or holds one non-negative 1-sigma value per sample.
	Uncertainty []float64
	// Source names where the spectrum was read from.
	Source string
}

// New validates the axes and returns a Spectrum referencing them. It fails
// with ErrFormat when lengths disagree, fewer than two samples are given,
// the wavelength axis is not positive and strictly increasing, or a flux
// or uncertainty value is not a finite number (uncertainties must also be
// non-negative).
func New(wavelength, flux, uncertainty []float64, source string) (*Spectrum, error) {
	n := len(wavelength)
	if n < 2 {
		return nil, formatError(source, errors.Newf("need at least 2 samples, got %d", n))
	}
	if len(flux) != n {
		return nil, formatError(source, errors.Newf("flux has %d samples, wavelength has %d", len(flux), n))
	}
	if uncertainty != nil && len(uncertainty) != n {
		return nil, formatError(source, errors.Newf("uncertainty has %d samples, wavelength has %d", len(uncertainty), n))
	}

	for i, w := range wavelength {
		if !(w > 0) || math.IsInf(w, 0) {
			return nil, formatError(source, errors.Newf("wavelength[%d] = %v is not positive", i, w))
		}
		if i > 0 && w <= wavelength[i-1] {
			return nil, formatError(source, errors.Newf("wavelength not strictly increasing at sample %d (%v after %v)", i, w, wavelength[i-1]))
		}
		if !isFinite(flux[i]) {
			return nil, formatError(source, errors.Newf("flux[%d] = %v is not finite", i, flux[i]))
		}
		if uncertainty != nil && (!isFinite(uncertainty[i]) || uncertainty[i] < 0) {
			return nil, formatError(source, errors.Newf("uncertainty[%d] = %v is not a non-negative number", i, uncertainty[i]))
		}
	}

	return &Spectrum{
		Wavelength:  wavelength,
		Flux:        flux,
		Uncertainty: uncertainty,
		Source:      source,
	}, nil
}

// Len returns the number of samples.
func (s *Spectrum) Len() int {
	return len(s.Wavelength)
}

// Range returns the first and last wavelength.
func (s *Spectrum) Range() (lo, hi float64) {
	return s.Wavelength[0], s.Wavelength[len(s.Wavelength)-1]
}

// HasUncertainty reports whether per-sample uncertainties are present.
func (s *Spectrum) HasUncertainty() bool {
	return s.Uncertainty != nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
