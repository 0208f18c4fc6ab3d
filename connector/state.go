package connector

// ConnectionState represents the lifecycle state of a connector.
//
// The same enum gates the circuit breaker: StateCircuitOpen means the breaker
// is rejecting calls, StateConnecting doubles as the half-open probe state.
type ConnectionState int

const (
	// StateDisconnected means no connection has been established.
	StateDisconnected ConnectionState = iota
	// StateConnecting means a connection attempt is in progress.
	StateConnecting
	// StateConnected means the connection is live and operations may run.
	StateConnected
	// StateError means the last connect or operation attempt failed.
	StateError
	// StateCircuitOpen means the circuit breaker is rejecting calls.
	StateCircuitOpen
)

// String returns the string representation of the state.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateError:
		return "error"
	case StateCircuitOpen:
		return "circuit-open"
	default:
		return "unknown"
	}
}
