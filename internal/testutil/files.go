package testutil

import (
	"bufio"
	"fmt"
	"os"

	"github.com/astrogo/fitsio"
)

// Card is a FITS header keyword for WriteFITS. Value may be a bool, an
// int, a float64 or a string.
type Card = fitsio.Card

// WriteFITS writes a single-HDU FITS file holding data as a BITPIX -64
// image with the given axes (NAXIS1 first) and extra header cards.
func WriteFITS(path string, axes []int, data []float64, cards ...Card) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fits, err := fitsio.Create(f)
	if err != nil {
		return err
	}
	defer fits.Close()

	img := fitsio.NewImage(-64, axes)
	defer img.Close()

	if err := img.Header().Append(cards...); err != nil {
		return err
	}
	if err := img.Write(data); err != nil {
		return err
	}
	if err := fits.Write(img); err != nil {
		return err
	}
	if err := fits.Close(); err != nil {
		return err
	}
	return f.Close()
}

// WriteTextSpectrum writes a three-column "wavelength flux variance" file.
func WriteTextSpectrum(path string, wl, flux, variance []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for i := range wl {
		fmt.Fprintf(w, "%.10g %.10g %.10g\n", wl[i], flux[i], variance[i])
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
