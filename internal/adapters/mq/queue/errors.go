package queue

import "errors"

// Sentinel errors reported back to submitters.
var (
	ErrClosed = errors.New("fetch queue closed")
	ErrFull   = errors.New("fetch queue full")
)
