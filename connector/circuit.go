package connector

import (
	"sync"
	"time"
)

// BreakerConfig configures a circuit breaker.
type BreakerConfig struct {
	// FailureThreshold is the number of failed calls before opening.
	// Default: 5
	FailureThreshold int

	// RecoveryTimeout is how long to wait before allowing a probe.
	// Default: 60 seconds
	RecoveryTimeout time.Duration

	// OnStateChange is called when the breaker state changes.
	OnStateChange func(from, to ConnectionState)
}

// CircuitBreaker tracks call-level failures for one connector and decides
// whether new calls may be attempted.
//
// The breaker is owned 1:1 by its connector. Its counter moves once per
// Execute call, not once per internal retry attempt, so the threshold is
// measured in exhausted calls.
type CircuitBreaker struct {
	config BreakerConfig

	mu          sync.Mutex
	state       ConnectionState
	failures    int
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker.
func NewCircuitBreaker(config BreakerConfig) *CircuitBreaker {
	// Apply defaults
	if config.FailureThreshold <= 0 {
		config.FailureThreshold = 5
	}
	if config.RecoveryTimeout <= 0 {
		config.RecoveryTimeout = 60 * time.Second
	}

	return &CircuitBreaker{
		config: config,
		state:  StateDisconnected,
	}
}

// CanExecute reports whether a call may be attempted.
//
// When the circuit is open and the recovery timeout has elapsed since the
// last failure, the breaker moves to StateConnecting as a half-open probe and
// allows the call.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateCircuitOpen {
		return true
	}

	if time.Since(cb.lastFailure) > cb.config.RecoveryTimeout {
		cb.setState(StateConnecting)
		return true
	}

	return false
}

// RecordSuccess resets the failure count and closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.setState(StateConnected)
}

// RecordFailure counts one failed call and opens the circuit at the
// configured threshold.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailure = time.Now()

	if cb.failures >= cb.config.FailureThreshold {
		cb.setState(StateCircuitOpen)
	}
}

// State returns the current breaker state.
func (cb *CircuitBreaker) State() ConnectionState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failures
}

// LastFailure returns the time of the most recent recorded failure.
func (cb *CircuitBreaker) LastFailure() time.Time {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.lastFailure
}

func (cb *CircuitBreaker) setState(state ConnectionState) {
	if state == cb.state {
		return
	}
	old := cb.state
	cb.state = state
	if cb.config.OnStateChange != nil {
		cb.config.OnStateChange(old, state)
	}
}
