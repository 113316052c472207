package spectrum

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ReadText parses a whitespace-delimited "wavelength flux variance" table,
// the format written by the extraction step. Blank lines and lines starting
// with '#' are ignored. The uncertainty is the square root of the variance.
func ReadText(r io.Reader, source string) (*Spectrum, error) {
	var wl, flux, unc []float64

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 {
			return nil, formatError(source, errors.Newf("line %d: expected 3 columns, got %d", lineNo, len(fields)))
		}

		var vals [3]float64
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, formatError(source, errors.Wrapf(err, "line %d: column %d", lineNo, i+1))
			}
			vals[i] = v
		}
		if vals[2] < 0 {
			return nil, formatError(source, errors.Newf("line %d: negative variance %v", lineNo, vals[2]))
		}

		wl = append(wl, vals[0])
		flux = append(flux, vals[1])
		unc = append(unc, math.Sqrt(vals[2]))
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "spectrum: read %s", source)
	}

	return New(wl, flux, unc, source)
}

// LoadText reads a text spectrum from path.
func LoadText(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "spectrum: open")
	}
	defer f.Close()

	return ReadText(f, path)
}
