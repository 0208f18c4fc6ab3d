package connector

import (
	"time"

	"github.com/google/uuid"
)

// OperationResult carries the outcome of one call through Execute.
//
// Failures are captured as data rather than returned as errors: callers must
// check Success. Error is empty whenever Success is true.
type OperationResult struct {
	// Success reports whether the operation completed.
	Success bool

	// Data is the opaque payload returned by the driver. The connector never
	// interprets it.
	Data any

	// Error is the human-readable failure reason. Empty on success.
	Error string

	// RetryCount is the number of attempts beyond the first.
	RetryCount int

	// Duration is the total wall time spent inside Execute, including backoff.
	Duration time.Duration

	// ServiceName identifies the connector that produced this result.
	ServiceName string

	// Operation is the operation name passed to Execute.
	Operation string

	// CallID uniquely identifies this Execute call for log correlation.
	CallID string

	// Timestamp is when the result was constructed.
	Timestamp time.Time
}

// DurationMillis returns the duration in milliseconds, the shape used by
// metrics sinks.
func (r OperationResult) DurationMillis() float64 {
	return float64(r.Duration) / float64(time.Millisecond)
}

// newResult constructs a result stamped with identity and timing.
func newResult(serviceName, operation, callID string) OperationResult {
	if callID == "" {
		callID = uuid.NewString()
	}
	return OperationResult{
		ServiceName: serviceName,
		Operation:   operation,
		CallID:      callID,
		Timestamp:   time.Now(),
	}
}
