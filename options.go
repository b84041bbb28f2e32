package ratelimit

import (
	"net/http"

	"github.com/secondsky/ratelimit/logger"
)

// SkipFunc reports whether a request should bypass rate limiting entirely,
// e.g. health checks. It runs before key generation so skipped requests
// never touch the counter store.
type SkipFunc func(r *http.Request) bool

// Config holds the middleware options.
type Config struct {
	KeyFunc KeyFunc
	Skip    SkipFunc
	Logger  logger.Logger
}

// Option configures the middleware.
type Option func(*Config)

// NewConfig creates a Config with defaults (key by client IP, no skip, noop
// logging), then applies the given options.
func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		KeyFunc: ByIP,
		Logger:  logger.NewNoop(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithKeyFunc sets how a limiter key is derived from a request.
func WithKeyFunc(fn KeyFunc) Option {
	return func(c *Config) {
		if fn != nil {
			c.KeyFunc = fn
		}
	}
}

// WithSkip sets a predicate that bypasses evaluation for matching requests.
func WithSkip(fn SkipFunc) Option {
	return func(c *Config) {
		c.Skip = fn
	}
}

// WithLogger sets the middleware logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.Logger = l
		}
	}
}
