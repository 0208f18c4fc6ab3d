package connector

import "time"

// Config configures the retry and backoff policy of a connector.
type Config struct {
	// MaxRetries is the number of retries after the initial attempt.
	// Default: 3
	MaxRetries int

	// BackoffFactor is the exponential base for retry delays, in seconds.
	// The delay before retry n is BackoffFactor^n seconds, capped at MaxDelay.
	// Default: 2.0
	BackoffFactor float64

	// MaxDelay caps the backoff delay between attempts.
	// Default: 60 seconds
	MaxDelay time.Duration

	// Jitter adds 10-30% randomized delay on top of the base backoff to
	// avoid synchronized retry storms.
	// Default: false
	Jitter bool

	// SingleFlightConnect serializes concurrent connect attempts through a
	// singleflight group instead of the default wait-once coordination.
	// Default: false
	SingleFlightConnect bool

	// IsDisconnect classifies an operation error as connection loss. When it
	// returns true the connector drops to StateError so the next attempt
	// reconnects. Default: nil (errors are plain operation failures).
	IsDisconnect func(err error) bool
}

// withDefaults returns a copy of the config with defaults applied.
func (c Config) withDefaults() Config {
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.BackoffFactor <= 0 {
		c.BackoffFactor = 2.0
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 60 * time.Second
	}
	return c
}
