package health

import (
	"context"
	"sync"
	"time"

	"github.com/jonwraymond/serviceops/connector"
)

// SnapshotCache holds the last aggregate health result for a TTL so frequent
// dashboard polls reuse one fleet check instead of probing every driver.
type SnapshotCache struct {
	ttl time.Duration

	mu        sync.RWMutex
	snapshot  connector.AggregateHealth
	expiresAt time.Time
}

// NewSnapshotCache creates a cache with the given TTL. TTL<=0 disables
// caching: every Get runs a fresh check.
func NewSnapshotCache(ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{ttl: ttl}
}

// Get returns the cached aggregate health, refreshing it from the registry
// when the snapshot has expired.
func (s *SnapshotCache) Get(ctx context.Context, reg *connector.Registry) connector.AggregateHealth {
	s.mu.RLock()
	if time.Now().Before(s.expiresAt) {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap
	}
	s.mu.RUnlock()

	agg := reg.CheckAll(ctx)

	if s.ttl > 0 {
		s.mu.Lock()
		s.snapshot = agg
		s.expiresAt = time.Now().Add(s.ttl)
		s.mu.Unlock()
	}

	return agg
}

// Invalidate drops the cached snapshot.
func (s *SnapshotCache) Invalidate() {
	s.mu.Lock()
	s.expiresAt = time.Time{}
	s.mu.Unlock()
}
