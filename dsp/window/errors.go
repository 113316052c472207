package window

import "errors"

var (
	errUnknownType      = errors.New("window: unknown window type")
	errMismatchedLength = errors.New("window: samples and coefficients must have same length")
)
