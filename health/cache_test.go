package health

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonwraymond/serviceops/connector"
)

// countingDriver counts health probes.
type countingDriver struct {
	mu     sync.Mutex
	probes int
}

func (d *countingDriver) Connect(ctx context.Context) error    { return nil }
func (d *countingDriver) Disconnect(ctx context.Context) error { return nil }
func (d *countingDriver) Execute(ctx context.Context, operation string, args map[string]any) (any, error) {
	return nil, nil
}
func (d *countingDriver) HealthCheck(ctx context.Context) (map[string]any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.probes++
	return nil, nil
}

func (d *countingDriver) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.probes
}

func TestSnapshotCache_ServesWithinTTL(t *testing.T) {
	d := &countingDriver{}
	reg := connector.NewRegistry()
	reg.Register(connector.New("svc", d))

	cache := NewSnapshotCache(time.Hour)

	first := cache.Get(context.Background(), reg)
	second := cache.Get(context.Background(), reg)

	if d.count() != 1 {
		t.Errorf("driver probed %d times, want 1", d.count())
	}
	if !first.OverallHealthy || !second.OverallHealthy {
		t.Error("cached aggregate lost health state")
	}
}

func TestSnapshotCache_RefreshesAfterExpiry(t *testing.T) {
	d := &countingDriver{}
	reg := connector.NewRegistry()
	reg.Register(connector.New("svc", d))

	cache := NewSnapshotCache(10 * time.Millisecond)

	cache.Get(context.Background(), reg)
	time.Sleep(20 * time.Millisecond)
	cache.Get(context.Background(), reg)

	if d.count() != 2 {
		t.Errorf("driver probed %d times, want 2", d.count())
	}
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	d := &countingDriver{}
	reg := connector.NewRegistry()
	reg.Register(connector.New("svc", d))

	cache := NewSnapshotCache(time.Hour)
	cache.Get(context.Background(), reg)
	cache.Invalidate()
	cache.Get(context.Background(), reg)

	if d.count() != 2 {
		t.Errorf("driver probed %d times, want 2", d.count())
	}
}

func TestSnapshotCache_ZeroTTLDisablesCaching(t *testing.T) {
	d := &countingDriver{}
	reg := connector.NewRegistry()
	reg.Register(connector.New("svc", d))

	cache := NewSnapshotCache(0)
	cache.Get(context.Background(), reg)
	cache.Get(context.Background(), reg)

	if d.count() != 2 {
		t.Errorf("driver probed %d times, want 2", d.count())
	}
}
