package geocode

import "errors"

// Sentinel errors for geocoding lookups.
var (
	ErrNotConfigured = errors.New("geocoding not configured")
	ErrEmptyQuery    = errors.New("empty location")
	ErrNoMatch       = errors.New("no geocoding match")
	ErrUpstream      = errors.New("geocoding upstream error")
)
