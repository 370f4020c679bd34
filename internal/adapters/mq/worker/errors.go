package worker

import "errors"

// Sentinel errors carried in fetch outcomes.
var (
	ErrRejected = errors.New("fetch pool busy")
	ErrPanic    = errors.New("fetch panicked")
)
