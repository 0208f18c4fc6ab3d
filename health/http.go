package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonwraymond/serviceops/connector"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// This is a simple check that the process is running.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes.
// It runs the registry's aggregate health check.
func ReadinessHandler(reg *connector.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		agg := reg.CheckAll(ctx)

		w.Header().Set("Content-Type", "text/plain")

		if agg.OverallHealthy {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNHEALTHY"))
	}
}

// FleetResponse is the JSON response for the detailed fleet health endpoint.
type FleetResponse struct {
	OverallHealthy bool                       `json:"overall_healthy"`
	HealthyCount   int                        `json:"healthy_count"`
	TotalCount     int                        `json:"total_count"`
	Timestamp      string                     `json:"timestamp"`
	Services       map[string]ServiceResponse `json:"services"`
}

// ServiceResponse is the JSON response for a single service.
type ServiceResponse struct {
	Healthy             bool           `json:"healthy"`
	State               string         `json:"state"`
	BreakerState        string         `json:"breaker_state"`
	BreakerFailures     int            `json:"breaker_failures"`
	HealthCheckFailures int            `json:"health_check_failures"`
	LastHealthCheck     string         `json:"last_health_check,omitempty"`
	Duration            string         `json:"duration,omitempty"`
	Details             map[string]any `json:"details,omitempty"`
	Error               string         `json:"error,omitempty"`
}

// DetailedHandler returns an HTTP handler that provides per-service health
// information across the fleet. When a cache is supplied, responses within
// its TTL are served from the last aggregate check.
func DetailedHandler(reg *connector.Registry, cache ...*SnapshotCache) http.HandlerFunc {
	var snap *SnapshotCache
	if len(cache) > 0 {
		snap = cache[0]
	}

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var agg connector.AggregateHealth
		if snap != nil {
			agg = snap.Get(ctx, reg)
		} else {
			agg = reg.CheckAll(ctx)
		}

		response := fleetResponse(agg)

		w.Header().Set("Content-Type", "application/json")
		if agg.OverallHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}

// ServiceHandler returns an HTTP handler reporting one service's health.
func ServiceHandler(reg *connector.Registry, serviceName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		c, err := reg.Get(serviceName)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}

		report := c.HealthCheck(ctx)

		w.Header().Set("Content-Type", "application/json")
		if report.Healthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(serviceResponse(report))
	}
}

func fleetResponse(agg connector.AggregateHealth) FleetResponse {
	response := FleetResponse{
		OverallHealthy: agg.OverallHealthy,
		HealthyCount:   agg.HealthyCount,
		TotalCount:     agg.TotalCount,
		Timestamp:      agg.Timestamp.UTC().Format(time.RFC3339),
		Services:       make(map[string]ServiceResponse, len(agg.Services)),
	}
	for name, report := range agg.Services {
		response.Services[name] = serviceResponse(report)
	}
	return response
}

func serviceResponse(report connector.HealthReport) ServiceResponse {
	resp := ServiceResponse{
		Healthy:             report.Healthy,
		State:               report.State.String(),
		BreakerState:        report.BreakerState.String(),
		BreakerFailures:     report.BreakerFailures,
		HealthCheckFailures: report.HealthCheckFailures,
		Duration:            report.Duration.String(),
		Details:             report.Details,
		Error:               report.Error,
	}
	if !report.LastHealthCheck.IsZero() {
		resp.LastHealthCheck = report.LastHealthCheck.UTC().Format(time.RFC3339)
	}
	return resp
}
