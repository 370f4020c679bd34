package repository

import "errors"

// Sentinel kinds for saved-search store errors.
var (
	ErrNotFound = errors.New("saved search not found")
	ErrInvalid  = errors.New("invalid saved search")
	ErrStorage  = errors.New("saved search storage failed")
)
