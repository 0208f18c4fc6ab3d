// Package connector provides a resilient-operation executor for calls to
// unreliable external services.
//
// A Connector wraps a service-specific Driver with connection lifecycle
// management, retry with exponential backoff and jitter, and per-service
// circuit breaking. A Registry holds many connectors and aggregates health
// checks and cleanup across the fleet.
//
// # Basic Usage
//
//	conn := connector.New("calendly", driver,
//	    connector.WithConfig(connector.Config{
//	        MaxRetries:    3,
//	        BackoffFactor: 2.0,
//	        MaxDelay:      60 * time.Second,
//	        Jitter:        true,
//	    }),
//	    connector.WithBreakerConfig(connector.BreakerConfig{
//	        FailureThreshold: 5,
//	        RecoveryTimeout:  time.Minute,
//	    }),
//	)
//
//	result := conn.Execute(ctx, "list_events", map[string]any{"count": 10})
//	if !result.Success {
//	    log.Printf("list_events failed after %d retries: %s", result.RetryCount, result.Error)
//	}
//
// Execute never returns a Go error for expected failure modes (outages, rate
// limits, intermittent network errors); it normalizes them into the
// OperationResult. When the circuit is open, calls are rejected immediately
// without touching the driver, and the breaker allows a half-open probe once
// the recovery timeout has elapsed.
//
// # Fleet Operations
//
//	reg := connector.NewRegistry()
//	reg.Register(calendly)
//	reg.Register(twitter)
//
//	agg := reg.CheckAll(ctx)
//	if !agg.OverallHealthy {
//	    log.Printf("%d/%d services healthy", agg.HealthyCount, agg.TotalCount)
//	}
//
//	defer reg.CleanupAll(ctx)
package connector
