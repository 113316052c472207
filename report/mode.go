// Package report renders redshift search results as diagnostic plots and
// machine-readable summaries.
package report

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrUnsupportedOption is returned for a plot mode outside the closed set.
var ErrUnsupportedOption = errors.New("report: unsupported option")

// Mode selects which templates a rendered report shows.
type Mode int

const (
	// ModeBest plots only the winning template.
	ModeBest Mode = iota + 1
	// ModeAll plots every template in search order and labels the winner.
	ModeAll
)

func (m Mode) String() string {
	switch m {
	case ModeBest:
		return "best"
	case ModeAll:
		return "all"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode accepts "best" or "all".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "best":
		return ModeBest, nil
	case "all":
		return ModeAll, nil
	default:
		return 0, errors.Mark(errors.Newf("report: unknown plot mode %q", s), ErrUnsupportedOption)
	}
}
