package core

import "errors"

var (
	// ErrDegenerateVector is returned when a zero-length vector would have to be normalized
	ErrDegenerateVector = errors.New("degenerate vector")

	// ErrInvalidConfig is returned for render settings that cannot produce an image
	ErrInvalidConfig = errors.New("invalid config")
)
