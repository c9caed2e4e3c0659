package clock

import "errors"

var (
	// ErrUnresolvedClockPath is the only error callers of the resolver see.
	// The walker folds formula errors into it.
	ErrUnresolvedClockPath = errors.New("clock: unresolved clock path")

	ErrDivisionByZero      = errors.New("clock: division by zero")
	ErrUnsupportedEncoding = errors.New("clock: unsupported encoding")
)
