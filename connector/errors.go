package connector

import "errors"

// Sentinel errors for connector operations.
var (
	// ErrCircuitOpen is the failure surfaced in OperationResult.Error when the
	// circuit breaker rejects a call. The message is part of the result
	// contract, so it carries no package prefix.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrNotConnected is returned when a connection could not be established.
	ErrNotConnected = errors.New("connector: not connected")

	// ErrServiceNotFound is returned when a registry lookup misses.
	ErrServiceNotFound = errors.New("connector: service not found")
)
