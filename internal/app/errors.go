package service

import "errors"

// Sentinel errors returned by the search service.
var (
	ErrNotStarted = errors.New("search service not started")
	ErrStart      = errors.New("start search service")
	ErrPipeline   = errors.New("aggregation pipeline failed")
)
