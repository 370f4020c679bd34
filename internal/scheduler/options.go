package scheduler

import (
	"time"

	"github.com/okian/jobscout/pkg/logger"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSpec sets the cron spec, for example "@every 6h" or "0 */6 * * *".
func WithSpec(spec string) Option {
	return func(s *Scheduler) {
		s.spec = spec
	}
}

// WithLimit sets how many listings each re-run asks for.
func WithLimit(limit int) Option {
	return func(s *Scheduler) {
		if limit > 0 {
			s.limit = limit
		}
	}
}

// WithSeenSize bounds the set of listing keys remembered across runs.
func WithSeenSize(n int) Option {
	return func(s *Scheduler) {
		if n > 0 {
			s.seenSize = n
		}
	}
}

// WithRunOnStart controls the immediate run performed by Start.
func WithRunOnStart(run bool) Option {
	return func(s *Scheduler) {
		s.runOnStart = run
	}
}

// WithClock overrides the run timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the scheduler logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}
