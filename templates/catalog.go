// Package templates resolves and loads the reference spectra that a
// target is cross-correlated against.
//
// Templates are addressed by integer index. The on-disk name follows the
// SDSS DR2 convention spDR2-NNN, so index 23 lives at <root>/spDR2-023.fit.
package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/eteq/saga-salt/spectrum"
)

// DefaultIndices are the galaxy and quasar templates searched when the
// caller does not choose.
var DefaultIndices = []int{23, 24, 25, 26, 27, 28}

// RootEnv names the environment variable that may hold the catalog root.
const RootEnv = "SAGA_SALT_TEMPLATES"

// Format selects the file format of a catalog.
type Format int

const (
	// FormatSDSS stores templates as SDSS spDR2 FITS images (.fit).
	FormatSDSS Format = iota
	// FormatText stores templates as three-column text tables (.txt).
	FormatText
)

// ParseFormat resolves "sdss" or "text" (case-insensitive).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sdss":
		return FormatSDSS, nil
	case "text":
		return FormatText, nil
	default:
		return FormatSDSS, errors.Newf("templates: unknown catalog format %q", s)
	}
}

func (f Format) String() string {
	switch f {
	case FormatSDSS:
		return "sdss"
	case FormatText:
		return "text"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) extension() string {
	if f == FormatText {
		return ".txt"
	}
	return ".fit"
}

func (f Format) loader() func(string) (*spectrum.Spectrum, error) {
	if f == FormatText {
		return spectrum.LoadText
	}
	return spectrum.LoadSDSS
}

// Catalog describes where templates live on disk.
type Catalog struct {
	Root   string
	Format Format
}

// DefaultRoot returns the catalog root from SAGA_SALT_TEMPLATES, or
// "template" relative to the working directory.
func DefaultRoot() string {
	if root := os.Getenv(RootEnv); root != "" {
		return root
	}
	return "template"
}

// Name returns the catalog name of index, e.g. spDR2-023.
func (c Catalog) Name(index int) string {
	return fmt.Sprintf("spDR2-%03d", index)
}

// ResolvePath returns the file location of index. It does not touch the
// filesystem.
func (c Catalog) ResolvePath(index int) string {
	return filepath.Join(c.Root, c.Name(index)+c.Format.extension())
}

// Listing describes one catalog entry for display.
type Listing struct {
	Index  int
	Name   string
	Path   string
	Exists bool
}

// List reports the name, path and presence of each index.
func (c Catalog) List(indices []int) []Listing {
	out := make([]Listing, 0, len(indices))
	for _, idx := range indices {
		path := c.ResolvePath(idx)
		_, err := os.Stat(path)
		out = append(out, Listing{
			Index:  idx,
			Name:   c.Name(idx),
			Path:   path,
			Exists: err == nil,
		})
	}
	return out
}
