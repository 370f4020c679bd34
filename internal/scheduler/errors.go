package scheduler

import "errors"

var (
	// ErrSchedule is returned when the cron spec cannot be parsed.
	ErrSchedule = errors.New("invalid saved search schedule")
	// ErrListFailed is returned when active saved searches cannot be loaded.
	ErrListFailed = errors.New("listing saved searches failed")
)
