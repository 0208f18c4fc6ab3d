package config

import (
	"time"

	"github.com/jonwraymond/serviceops/connector"
)

// ServiceConfig is the environment-driven per-service configuration record.
//
// Load it with New[ServiceConfig]("CALENDLY") and similar, one prefix per
// service. Field defaults match the connector package's own defaults.
type ServiceConfig struct {
	MaxRetries          int           `split_words:"true" default:"3"`
	BackoffFactor       float64       `split_words:"true" default:"2.0"`
	MaxDelay            time.Duration `split_words:"true" default:"60s"`
	Jitter              bool          `split_words:"true" default:"false"`
	SingleFlightConnect bool          `split_words:"true" default:"false"`
	FailureThreshold    int           `split_words:"true" default:"5"`
	RecoveryTimeout     time.Duration `split_words:"true" default:"60s"`
}

// ConnectorConfig converts the record into the connector's retry config.
func (c ServiceConfig) ConnectorConfig() connector.Config {
	return connector.Config{
		MaxRetries:          c.MaxRetries,
		BackoffFactor:       c.BackoffFactor,
		MaxDelay:            c.MaxDelay,
		Jitter:              c.Jitter,
		SingleFlightConnect: c.SingleFlightConnect,
	}
}

// BreakerConfig converts the record into the circuit breaker config.
func (c ServiceConfig) BreakerConfig() connector.BreakerConfig {
	return connector.BreakerConfig{
		FailureThreshold: c.FailureThreshold,
		RecoveryTimeout:  c.RecoveryTimeout,
	}
}
