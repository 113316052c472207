package spectrum

import (
	"path/filepath"
	"strings"
)

// Load reads a target spectrum, choosing the reader by file extension:
// .fits, .fit and .fts are read as calibrated FITS spectra, anything else
// as a three-column text table.
func Load(path string) (*Spectrum, error) {
	if IsFITS(path) {
		return LoadIRAF(path)
	}
	return LoadText(path)
}

// IsFITS reports whether path carries a FITS file extension.
func IsFITS(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".fits", ".fit", ".fts":
		return true
	default:
		return false
	}
}
