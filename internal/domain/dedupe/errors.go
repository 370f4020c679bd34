package dedupe

import "errors"

// ErrUnknownPolicy is returned by KeyFor for unrecognized policy names.
var ErrUnknownPolicy = errors.New("unknown dedupe policy")
