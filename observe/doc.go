// Package observe provides observability primitives for service connectors.
//
// It is a pure instrumentation library: no execution, no transport, no I/O
// beyond exporter setup. Consumers wire the observer into their connectors
// and registries.
package observe
