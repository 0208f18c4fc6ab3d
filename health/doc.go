// Package health exposes fleet health over HTTP for operational dashboards.
//
// The handlers run the registry's aggregate health check and shape its
// results for liveness/readiness probes and detailed JSON dashboards:
//
//	reg := connector.NewRegistry()
//	// ... register connectors ...
//
//	http.Handle("/healthz", health.LivenessHandler())
//	http.Handle("/readyz", health.ReadinessHandler(reg))
//	http.Handle("/health", health.DetailedHandler(reg, health.NewSnapshotCache(10*time.Second)))
//
// The optional SnapshotCache keeps dashboards from driving a driver-level
// health probe on every poll.
package health
