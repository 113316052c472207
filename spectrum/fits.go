package spectrum

import (
	"encoding/binary"
	"io"
	"math"
	"os"

	"github.com/astrogo/fitsio"
	"github.com/cockroachdb/errors"
)

// ReadIRAF parses a wavelength-calibrated 1-D spectrum stored in the
// primary HDU of a FITS file, as written by IRAF-style reductions.
//
// The wavelength of pixel i (0-based) is CRVAL1 + (i+1-CRPIX1)*CDELT1,
// with CD1_1 accepted in place of CDELT1 and CRPIX1 defaulting to 1.
// DC-FLAG = 1 marks a log10-wavelength axis. For a 2-D image the first
// row is used as the flux.
func ReadIRAF(r io.Reader, source string) (*Spectrum, error) {
	hdr, flux, err := readPrimaryImage(r, source)
	if err != nil {
		return nil, err
	}

	crval, err := requireFloat(hdr, source, "CRVAL1")
	if err != nil {
		return nil, err
	}
	cdelt, err := requireFloat(hdr, source, "CDELT1", "CD1_1")
	if err != nil {
		return nil, err
	}
	crpix := 1.0
	if v, ok := headerFloat(hdr, "CRPIX1"); ok {
		crpix = v
	}
	logAxis := false
	if v, ok := headerFloat(hdr, "DC-FLAG"); ok && v == 1 {
		logAxis = true
	}

	wl := make([]float64, len(flux))
	for i := range wl {
		w := crval + (float64(i+1)-crpix)*cdelt
		if logAxis {
			w = math.Pow(10, w)
		}
		wl[i] = w
	}

	return New(wl, flux, nil, source)
}

// ReadSDSS parses an SDSS spDR2 cross-correlation template: row 0 of the
// primary image is the flux and log10(wavelength) of pixel i is
// COEFF0 + COEFF1*i. CRVAL1/CD1_1 are accepted when the COEFF keywords
// are absent.
func ReadSDSS(r io.Reader, source string) (*Spectrum, error) {
	hdr, flux, err := readPrimaryImage(r, source)
	if err != nil {
		return nil, err
	}

	c0, err := requireFloat(hdr, source, "COEFF0", "CRVAL1")
	if err != nil {
		return nil, err
	}
	c1, err := requireFloat(hdr, source, "COEFF1", "CD1_1")
	if err != nil {
		return nil, err
	}

	wl := make([]float64, len(flux))
	for i := range wl {
		wl[i] = math.Pow(10, c0+c1*float64(i))
	}

	return New(wl, flux, nil, source)
}

// LoadIRAF reads a calibrated FITS spectrum from path.
func LoadIRAF(path string) (*Spectrum, error) {
	return loadFile(path, ReadIRAF)
}

// LoadSDSS reads an SDSS template from path.
func LoadSDSS(path string) (*Spectrum, error) {
	return loadFile(path, ReadSDSS)
}

func loadFile(path string, read func(io.Reader, string) (*Spectrum, error)) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "spectrum: open")
	}
	defer f.Close()

	return read(f, path)
}

// readPrimaryImage returns the header and the first row of the primary
// image, scaled by BSCALE/BZERO.
func readPrimaryImage(r io.Reader, source string) (*fitsio.Header, []float64, error) {
	f, err := fitsio.Open(r)
	if err != nil {
		return nil, nil, formatError(source, errors.Wrap(err, "not a FITS file"))
	}
	defer f.Close()

	if len(f.HDUs()) == 0 {
		return nil, nil, formatError(source, errors.New("no HDUs"))
	}
	img, ok := f.HDU(0).(fitsio.Image)
	if !ok {
		return nil, nil, formatError(source, errors.New("primary HDU is not an image"))
	}

	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) == 0 || axes[0] == 0 {
		return nil, nil, formatError(source, errors.New("primary HDU has no data"))
	}
	n := axes[0]

	decode, size, err := pixelDecoder(hdr.Bitpix())
	if err != nil {
		return nil, nil, formatError(source, err)
	}
	raw := img.Raw()
	if len(raw) < n*size {
		return nil, nil, formatError(source, errors.Newf("image data truncated: %d bytes for %d pixels", len(raw), n))
	}

	scale, zero := 1.0, 0.0
	if v, ok := headerFloat(hdr, "BSCALE"); ok {
		scale = v
	}
	if v, ok := headerFloat(hdr, "BZERO"); ok {
		zero = v
	}

	flux := make([]float64, n)
	for i := range flux {
		flux[i] = decode(raw[i*size:])*scale + zero
	}
	return hdr, flux, nil
}

// pixelDecoder returns a big-endian decoder and pixel size for a BITPIX.
func pixelDecoder(bitpix int) (func([]byte) float64, int, error) {
	switch bitpix {
	case 8:
		return func(b []byte) float64 { return float64(b[0]) }, 1, nil
	case 16:
		return func(b []byte) float64 { return float64(int16(binary.BigEndian.Uint16(b))) }, 2, nil
	case 32:
		return func(b []byte) float64 { return float64(int32(binary.BigEndian.Uint32(b))) }, 4, nil
	case 64:
		return func(b []byte) float64 { return float64(int64(binary.BigEndian.Uint64(b))) }, 8, nil
	case -32:
		return func(b []byte) float64 { return float64(math.Float32frombits(binary.BigEndian.Uint32(b))) }, 4, nil
	case -64:
		return func(b []byte) float64 { return math.Float64frombits(binary.BigEndian.Uint64(b)) }, 8, nil
	default:
		return nil, 0, errors.Newf("unsupported BITPIX %d", bitpix)
	}
}

// requireFloat returns the first of names present in hdr as a float.
func requireFloat(hdr *fitsio.Header, source string, names ...string) (float64, error) {
	for _, name := range names {
		if v, ok := headerFloat(hdr, name); ok {
			return v, nil
		}
	}
	return 0, formatError(source, errors.Newf("missing header keyword %v", names))
}

func headerFloat(hdr *fitsio.Header, name string) (float64, bool) {
	card := hdr.Get(name)
	if card == nil {
		return 0, false
	}
	switch v := card.Value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int8:
		return float64(v), true
	default:
		return 0, false
	}
}
