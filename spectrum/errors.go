package spectrum

import "github.com/cockroachdb/errors"

// ErrFormat marks every failure caused by a malformed spectrum file or
// inconsistent spectrum arrays. Test with errors.Is.
var ErrFormat = errors.New("spectrum: malformed spectrum")

// formatError annotates err with the source and marks it as ErrFormat.
func formatError(source string, err error) error {
	return errors.Mark(errors.Wrapf(err, "spectrum: %s", source), ErrFormat)
}
