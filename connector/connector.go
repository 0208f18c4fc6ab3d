package connector

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/serviceops/observe"
)

// connectWait is the single short wait used when another call is already
// connecting. Deliberately weak coordination: a brief duplicate connect under
// heavy concurrency is accepted unless SingleFlightConnect is set.
const connectWait = 100 * time.Millisecond

// Driver is the set of primitives a concrete service adapter must supply.
//
// Contract:
//   - Connect establishes the underlying session. Ordinary failures are
//     returned as errors, not panics.
//   - Disconnect tears the session down and must be idempotent.
//   - Execute performs exactly one attempt of the named operation and must
//     not retry internally.
type Driver interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Execute(ctx context.Context, operation string, args map[string]any) (any, error)
}

// HealthReporter is an optional Driver extension for deeper health checks,
// such as a lightweight API ping. Drivers that do not implement it are
// reported healthy whenever they are connected.
type HealthReporter interface {
	HealthCheck(ctx context.Context) (map[string]any, error)
}

// Connector wraps a Driver with connection lifecycle, retry, backoff and
// circuit-breaking policy.
//
// Concurrent Execute calls against the same connector are allowed; state and
// breaker mutations are serialized internally.
type Connector struct {
	serviceName    string
	externalUserID string
	config         Config
	driver         Driver
	breaker        *CircuitBreaker

	logger  observe.Logger
	metrics observe.OperationMetrics
	tracer  observe.Tracer

	mu                  sync.Mutex
	state               ConnectionState
	healthCheckFailures int
	lastHealthCheck     time.Time

	connectGroup singleflight.Group

	// Injection points for deterministic tests.
	sleep   func(ctx context.Context, d time.Duration) error
	randPct func() float64
}

// Option configures a Connector.
type Option func(*Connector)

// WithConfig sets the retry and backoff configuration.
func WithConfig(cfg Config) Option {
	return func(c *Connector) {
		c.config = cfg.withDefaults()
	}
}

// WithBreakerConfig sets the circuit breaker configuration.
func WithBreakerConfig(cfg BreakerConfig) Option {
	return func(c *Connector) {
		c.breaker = NewCircuitBreaker(cfg)
	}
}

// WithExternalUser scopes the connector to a tenant or user. The value is
// opaque to the connector and surfaces only in status and telemetry.
func WithExternalUser(id string) Option {
	return func(c *Connector) {
		c.externalUserID = id
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l observe.Logger) Option {
	return func(c *Connector) {
		c.logger = l
	}
}

// WithMetrics attaches an operation metrics sink.
func WithMetrics(m observe.OperationMetrics) Option {
	return func(c *Connector) {
		c.metrics = m
	}
}

// WithTracer attaches a tracer; each Execute call runs inside one span.
func WithTracer(t observe.Tracer) Option {
	return func(c *Connector) {
		c.tracer = t
	}
}

// New creates a connector for the named service around the given driver.
func New(serviceName string, driver Driver, opts ...Option) *Connector {
	c := &Connector{
		serviceName: serviceName,
		config:      Config{}.withDefaults(),
		driver:      driver,
		state:       StateDisconnected,
		sleep:       sleepCtx,
		randPct:     rand.Float64,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = NewCircuitBreaker(BreakerConfig{})
	}
	return c
}

// ServiceName returns the connector's identity key within a registry.
func (c *Connector) ServiceName() string {
	return c.serviceName
}

// ExternalUserID returns the tenant/user scope of this connector.
func (c *Connector) ExternalUserID() string {
	return c.externalUserID
}

// Breaker returns the connector's circuit breaker.
func (c *Connector) Breaker() *CircuitBreaker {
	return c.breaker
}

// State returns the current connection state.
func (c *Connector) State() ConnectionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Execute runs the named operation through the full resilience policy:
// circuit breaker gating, connection management, and retry with exponential
// backoff.
//
// Execute never returns an error; all expected failure modes are normalized
// into the result. Callers must check result.Success.
func (c *Connector) Execute(ctx context.Context, operation string, args map[string]any) (result OperationResult) {
	start := time.Now()
	result = newResult(c.serviceName, operation, "")

	if c.tracer != nil {
		var span trace.Span
		ctx, span = c.tracer.StartSpan(ctx, c.meta(operation))
		defer func() {
			var spanErr error
			if !result.Success {
				spanErr = errors.New(result.Error)
			}
			c.tracer.EndSpan(span, spanErr)
		}()
	}

	if !c.breaker.CanExecute() {
		result.Error = ErrCircuitOpen.Error()
		result.Duration = time.Since(start)
		c.logWarn(ctx, operation, "call rejected, circuit open",
			observe.Field{Key: "call_id", Value: result.CallID})
		c.recordOp(ctx, operation, result)
		return result
	}

	var lastErr string

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		var attemptErr error

		if c.State() != StateConnected && !c.ensureConnected(ctx) {
			attemptErr = ErrNotConnected
		} else {
			data, err := c.driver.Execute(ctx, operation, args)
			if err == nil {
				c.breaker.RecordSuccess()
				result.Success = true
				result.Data = data
				result.RetryCount = attempt
				result.Duration = time.Since(start)
				c.recordOp(ctx, operation, result)
				return result
			}
			attemptErr = err
			if c.config.IsDisconnect != nil && c.config.IsDisconnect(err) {
				c.setState(StateError)
			}
		}

		lastErr = attemptErr.Error()
		c.logDebug(ctx, operation, "attempt failed",
			observe.Field{Key: "call_id", Value: result.CallID},
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "error", Value: lastErr})

		if attempt == c.config.MaxRetries {
			break
		}

		if err := c.sleep(ctx, c.BackoffDelay(attempt)); err != nil {
			// Cancelled mid-backoff. An attempt already failed, so the
			// call-level failure still counts against the breaker.
			c.breaker.RecordFailure()
			result.Error = err.Error()
			result.RetryCount = attempt
			result.Duration = time.Since(start)
			c.recordOp(ctx, operation, result)
			return result
		}
	}

	c.breaker.RecordFailure()
	if lastErr == "" {
		lastErr = "unknown error"
	}
	result.Error = lastErr
	result.RetryCount = c.config.MaxRetries
	result.Duration = time.Since(start)
	c.logError(ctx, operation, "retries exhausted",
		observe.Field{Key: "call_id", Value: result.CallID},
		observe.Field{Key: "retries", Value: result.RetryCount},
		observe.Field{Key: "error", Value: lastErr})
	c.recordOp(ctx, operation, result)
	return result
}

// BackoffDelay returns the delay inserted after the given zero-based failed
// attempt: min(BackoffFactor^attempt, MaxDelay) seconds, plus 10-30% jitter
// when enabled.
func (c *Connector) BackoffDelay(attempt int) time.Duration {
	base := math.Pow(c.config.BackoffFactor, float64(attempt))
	if limit := c.config.MaxDelay.Seconds(); base > limit {
		base = limit
	}
	delay := time.Duration(base * float64(time.Second))

	if c.config.Jitter && delay > 0 {
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		delay += time.Duration((0.1 + 0.2*c.randPct()) * float64(delay))
	}

	return delay
}

// ensureConnected brings the connection up if needed and reports whether the
// connector is connected afterwards.
//
// If another call is already connecting, it waits once briefly and reports
// the state that call produced rather than starting a second attempt.
func (c *Connector) ensureConnected(ctx context.Context) bool {
	c.mu.Lock()
	switch c.state {
	case StateConnected:
		c.mu.Unlock()
		return true
	case StateConnecting:
		c.mu.Unlock()
		_ = c.sleep(ctx, connectWait)
		return c.State() == StateConnected
	}
	c.state = StateConnecting
	c.mu.Unlock()

	var err error
	if c.config.SingleFlightConnect {
		_, err, _ = c.connectGroup.Do("connect", func() (any, error) {
			return nil, c.driver.Connect(ctx)
		})
	} else {
		err = c.driver.Connect(ctx)
	}

	if err != nil {
		c.setState(StateError)
		c.logWarn(ctx, "", "connect failed",
			observe.Field{Key: "error", Value: err.Error()})
		return false
	}

	c.setState(StateConnected)
	return true
}

// HealthCheck probes the service and returns a merged report covering
// connector state, breaker state, and failure counters.
//
// Health-check failures accumulate independently and never trip the circuit
// breaker; only Execute's call-level failures do.
func (c *Connector) HealthCheck(ctx context.Context) HealthReport {
	start := time.Now()

	if c.State() != StateConnected && !c.ensureConnected(ctx) {
		c.mu.Lock()
		c.healthCheckFailures++
		c.mu.Unlock()
		return c.report(false, ErrNotConnected.Error(), nil, start)
	}

	healthy := true
	errMsg := ""
	var details map[string]any

	if hr, ok := c.driver.(HealthReporter); ok {
		d, err := hr.HealthCheck(ctx)
		details = d
		if err != nil {
			healthy = false
			errMsg = err.Error()
		}
	} else {
		healthy = c.State() == StateConnected
	}

	c.mu.Lock()
	if healthy {
		c.healthCheckFailures = 0
		c.lastHealthCheck = time.Now()
	} else {
		c.healthCheckFailures++
	}
	c.mu.Unlock()

	return c.report(healthy, errMsg, details, start)
}

// Cleanup disconnects the driver and resets the connector to
// StateDisconnected. Disconnect errors are logged, not propagated, so cleanup
// is safe to call repeatedly and during teardown.
func (c *Connector) Cleanup(ctx context.Context) {
	if err := c.driver.Disconnect(ctx); err != nil {
		c.logWarn(ctx, "", "disconnect failed during cleanup",
			observe.Field{Key: "error", Value: err.Error()})
	}
	c.setState(StateDisconnected)
}

// Status returns a point-in-time snapshot for operational tooling.
func (c *Connector) Status() Status {
	c.mu.Lock()
	state := c.state
	hcFailures := c.healthCheckFailures
	lastHC := c.lastHealthCheck
	c.mu.Unlock()

	return Status{
		ServiceName:         c.serviceName,
		ExternalUserID:      c.externalUserID,
		State:               state,
		BreakerState:        c.breaker.State(),
		BreakerFailures:     c.breaker.Failures(),
		HealthCheckFailures: hcFailures,
		LastHealthCheck:     lastHC,
		LastFailure:         c.breaker.LastFailure(),
	}
}

// Metrics returns the status snapshot shaped for a metrics sink.
func (c *Connector) Metrics() map[string]any {
	s := c.Status()
	m := map[string]any{
		"service":               s.ServiceName,
		"state":                 s.State.String(),
		"breaker_state":         s.BreakerState.String(),
		"breaker_failures":      s.BreakerFailures,
		"health_check_failures": s.HealthCheckFailures,
	}
	if s.ExternalUserID != "" {
		m["external_user_id"] = s.ExternalUserID
	}
	if !s.LastHealthCheck.IsZero() {
		m["last_health_check"] = s.LastHealthCheck.UTC().Format(time.RFC3339)
	}
	if !s.LastFailure.IsZero() {
		m["last_failure"] = s.LastFailure.UTC().Format(time.RFC3339)
	}
	return m
}

func (c *Connector) report(healthy bool, errMsg string, details map[string]any, start time.Time) HealthReport {
	c.mu.Lock()
	state := c.state
	hcFailures := c.healthCheckFailures
	lastHC := c.lastHealthCheck
	c.mu.Unlock()

	return HealthReport{
		Healthy:             healthy,
		ServiceName:         c.serviceName,
		State:               state,
		BreakerState:        c.breaker.State(),
		BreakerFailures:     c.breaker.Failures(),
		HealthCheckFailures: hcFailures,
		LastHealthCheck:     lastHC,
		Error:               errMsg,
		Details:             details,
		Duration:            time.Since(start),
		Timestamp:           start,
	}
}

func (c *Connector) setState(state ConnectionState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
}

func (c *Connector) meta(operation string) observe.ServiceMeta {
	return observe.ServiceMeta{
		Service:        c.serviceName,
		ExternalUserID: c.externalUserID,
		Operation:      operation,
	}
}

func (c *Connector) recordOp(ctx context.Context, operation string, result OperationResult) {
	if c.metrics == nil {
		return
	}
	c.metrics.RecordOperation(ctx, c.meta(operation), result.Duration, result.RetryCount, result.Success)
}

func (c *Connector) logDebug(ctx context.Context, operation, msg string, fields ...observe.Field) {
	if c.logger == nil {
		return
	}
	c.logger.WithService(c.meta(operation)).Debug(ctx, msg, fields...)
}

func (c *Connector) logWarn(ctx context.Context, operation, msg string, fields ...observe.Field) {
	if c.logger == nil {
		return
	}
	c.logger.WithService(c.meta(operation)).Warn(ctx, msg, fields...)
}

func (c *Connector) logError(ctx context.Context, operation, msg string, fields ...observe.Field) {
	if c.logger == nil {
		return
	}
	c.logger.WithService(c.meta(operation)).Error(ctx, msg, fields...)
}

// sleepCtx sleeps for d or until ctx is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
