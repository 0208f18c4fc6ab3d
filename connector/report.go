package connector

import "time"

// HealthReport is the outcome of one connector health check.
type HealthReport struct {
	// Healthy reports whether the service passed its check.
	Healthy bool `json:"healthy"`

	// ServiceName identifies the connector.
	ServiceName string `json:"service"`

	// State is the connector's connection state at report time.
	State ConnectionState `json:"-"`

	// BreakerState is the circuit breaker's gating state.
	BreakerState ConnectionState `json:"-"`

	// BreakerFailures is the breaker's current call-level failure count.
	BreakerFailures int `json:"breaker_failures"`

	// HealthCheckFailures counts consecutive failed health checks.
	HealthCheckFailures int `json:"health_check_failures"`

	// LastHealthCheck is when the last healthy check completed.
	LastHealthCheck time.Time `json:"last_health_check,omitzero"`

	// Error is the failure reason for an unhealthy report.
	Error string `json:"error,omitempty"`

	// Details carries driver-specific health fields.
	Details map[string]any `json:"details,omitempty"`

	// Duration is how long the check took.
	Duration time.Duration `json:"-"`

	// Timestamp is when the check started.
	Timestamp time.Time `json:"timestamp"`
}

// Status is a point-in-time connector snapshot for operational tooling.
type Status struct {
	ServiceName         string
	ExternalUserID      string
	State               ConnectionState
	BreakerState        ConnectionState
	BreakerFailures     int
	HealthCheckFailures int
	LastHealthCheck     time.Time
	LastFailure         time.Time
}

// AggregateHealth is the fleet-wide result of Registry.CheckAll.
type AggregateHealth struct {
	// OverallHealthy is true when every registered service is healthy and at
	// least one service is registered.
	OverallHealthy bool `json:"overall_healthy"`

	// HealthyCount is the number of healthy services.
	HealthyCount int `json:"healthy_count"`

	// TotalCount is the number of registered services.
	TotalCount int `json:"total_count"`

	// Services holds per-service reports keyed by service name.
	Services map[string]HealthReport `json:"services"`

	// Timestamp is when the aggregate check started.
	Timestamp time.Time `json:"timestamp"`
}
