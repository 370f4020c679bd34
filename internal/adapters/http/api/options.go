package api

import "github.com/okian/jobscout/pkg/logger"

const (
	defaultLimit    = 12
	defaultMaxLimit = 50
)

type serverConfig struct {
	defaultLimit int
	maxLimit     int
	logger       logger.Logger
}

// Option configures the Server.
type Option func(*serverConfig)

// WithDefaultLimit sets the page size used when the request has no limit.
func WithDefaultLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.defaultLimit = n
		}
	}
}

// WithMaxLimit caps the page size a request may ask for.
func WithMaxLimit(n int) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// WithLogger sets the access logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		c.logger = l
	}
}
