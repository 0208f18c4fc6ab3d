package connector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/serviceops/observe"
)

// Registry holds the connectors of a process and runs fleet-wide operations
// across them.
//
// Construct one registry at process start and pass it to consumers; multiple
// independent instances are supported for tests. The registry only holds
// references for lookup and aggregation; configuring a connector remains the
// creator's job.
type Registry struct {
	logger observe.Logger

	mu       sync.RWMutex
	services map[string]*Connector
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		services: make(map[string]*Connector),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger attaches a structured logger to the registry.
func WithRegistryLogger(l observe.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = l
	}
}

// Register inserts the connector under its service name. A later registration
// with the same name wins; no error on duplicates.
func (r *Registry) Register(c *Connector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[c.ServiceName()] = c
}

// Unregister removes the named connector if present.
func (r *Registry) Unregister(serviceName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.services, serviceName)
}

// Get returns the named connector, or ErrServiceNotFound.
func (r *Registry) Get(serviceName string) (*Connector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.services[serviceName]
	if !ok {
		return nil, ErrServiceNotFound
	}
	return c, nil
}

// Names returns the registered service names in unspecified order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.services))
	for name := range r.services {
		names = append(names, name)
	}
	return names
}

// snapshot copies the current service map so fleet operations iterate a
// stable view even while connectors are registered concurrently.
func (r *Registry) snapshot() map[string]*Connector {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make(map[string]*Connector, len(r.services))
	for name, c := range r.services {
		services[name] = c
	}
	return services
}

// CheckAll runs every connector's health check concurrently and aggregates
// the results. A panicking check is captured as an unhealthy entry for that
// service and does not abort the others.
func (r *Registry) CheckAll(ctx context.Context) AggregateHealth {
	services := r.snapshot()
	start := time.Now()

	agg := AggregateHealth{
		Services:  make(map[string]HealthReport, len(services)),
		Timestamp: start,
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, c := range services {
		wg.Add(1)
		go func(name string, c *Connector) {
			defer wg.Done()
			report := r.runCheck(ctx, name, c, start)
			mu.Lock()
			agg.Services[name] = report
			mu.Unlock()
		}(name, c)
	}

	wg.Wait()

	for _, report := range agg.Services {
		if report.Healthy {
			agg.HealthyCount++
		}
	}
	agg.TotalCount = len(agg.Services)
	agg.OverallHealthy = agg.TotalCount > 0 && agg.HealthyCount == agg.TotalCount
	return agg
}

func (r *Registry) runCheck(ctx context.Context, name string, c *Connector, start time.Time) (report HealthReport) {
	defer func() {
		if rec := recover(); rec != nil {
			report = HealthReport{
				ServiceName: name,
				Error:       fmt.Sprintf("health check panic: %v", rec),
				Duration:    time.Since(start),
				Timestamp:   start,
			}
			if r.logger != nil {
				r.logger.Error(ctx, "health check panicked",
					observe.Field{Key: "service", Value: name},
					observe.Field{Key: "panic", Value: fmt.Sprint(rec)})
			}
		}
	}()
	return c.HealthCheck(ctx)
}

// CleanupAll cleans up every registered connector. A failing cleanup is
// logged and does not stop cleanup of the remaining connectors.
func (r *Registry) CleanupAll(ctx context.Context) {
	for name, c := range r.snapshot() {
		func() {
			defer func() {
				if rec := recover(); rec != nil && r.logger != nil {
					r.logger.Error(ctx, "cleanup panicked",
						observe.Field{Key: "service", Value: name},
						observe.Field{Key: "panic", Value: fmt.Sprint(rec)})
				}
			}()
			c.Cleanup(ctx)
		}()
	}
}

// StatusAll returns a snapshot of every registered connector.
func (r *Registry) StatusAll() map[string]Status {
	services := r.snapshot()
	statuses := make(map[string]Status, len(services))
	for name, c := range services {
		statuses[name] = c.Status()
	}
	return statuses
}
