package daww

import "errors"

var (
	// ErrNotFound is reported by removal operations that matched nothing.
	// The score is left untouched when it is returned.
	ErrNotFound = errors.New("note not found")

	// ErrInvalidRange is reported for malformed selection bounds, e.g. a
	// tick range whose start is not before its end.
	ErrInvalidRange = errors.New("invalid selection range")
)
