package model

import "errors"

// ErrInvalidQuery marks a search request rejected before any provider call.
var ErrInvalidQuery = errors.New("invalid query")
