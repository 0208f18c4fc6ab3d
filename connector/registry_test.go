package connector

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
)

func TestRegistry_RegisterGetUnregister(t *testing.T) {
	reg := NewRegistry()

	first := New("calendly", &fakeDriver{})
	reg.Register(first)

	got, err := reg.Get("calendly")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != first {
		t.Error("Get() returned a different connector")
	}

	// Last registration wins
	second := New("calendly", &fakeDriver{})
	reg.Register(second)
	got, _ = reg.Get("calendly")
	if got != second {
		t.Error("duplicate registration did not overwrite")
	}

	reg.Unregister("calendly")
	if _, err := reg.Get("calendly"); !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("Get() after unregister error = %v, want ErrServiceNotFound", err)
	}

	// Unregister of a missing name is a no-op
	reg.Unregister("missing")
}

func TestRegistry_Names(t *testing.T) {
	reg := NewRegistry()
	reg.Register(New("calendly", &fakeDriver{}))
	reg.Register(New("twitter", &fakeDriver{}))

	names := reg.Names()
	sort.Strings(names)

	want := []string{"calendly", "twitter"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names()[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestRegistry_CheckAll(t *testing.T) {
	reg := NewRegistry()
	reg.Register(New("calendly", &fakeDriver{}))
	reg.Register(New("twitter", &fakeDriver{}))

	agg := reg.CheckAll(context.Background())

	if !agg.OverallHealthy {
		t.Error("OverallHealthy = false with two healthy services")
	}
	if agg.HealthyCount != 2 || agg.TotalCount != 2 {
		t.Errorf("counts = %d/%d, want 2/2", agg.HealthyCount, agg.TotalCount)
	}
	for _, name := range []string{"calendly", "twitter"} {
		if _, ok := agg.Services[name]; !ok {
			t.Errorf("missing entry for %q", name)
		}
	}
}

func TestRegistry_CheckAllEmpty(t *testing.T) {
	reg := NewRegistry()

	agg := reg.CheckAll(context.Background())

	if agg.OverallHealthy {
		t.Error("OverallHealthy = true with no services")
	}
	if agg.TotalCount != 0 {
		t.Errorf("TotalCount = %d, want 0", agg.TotalCount)
	}
}

func TestRegistry_CheckAllIsolatesPanics(t *testing.T) {
	healthy := New("calendly", &fakeDriver{})

	panicking := &healthDriver{}
	panicking.healthFn = func(ctx context.Context) (map[string]any, error) {
		panic("twitter exploded")
	}

	reg := NewRegistry()
	reg.Register(healthy)
	reg.Register(New("twitter", panicking))

	agg := reg.CheckAll(context.Background())

	if agg.OverallHealthy {
		t.Error("OverallHealthy = true with a panicking check")
	}
	if agg.HealthyCount != 1 || agg.TotalCount != 2 {
		t.Errorf("counts = %d/%d, want 1/2", agg.HealthyCount, agg.TotalCount)
	}

	entry, ok := agg.Services["twitter"]
	if !ok {
		t.Fatal("panicking service missing from results")
	}
	if entry.Healthy {
		t.Error("panicking service reported healthy")
	}
	if !strings.Contains(entry.Error, "twitter exploded") {
		t.Errorf("Error = %q, want the panic message", entry.Error)
	}

	if !agg.Services["calendly"].Healthy {
		t.Error("healthy service report lost")
	}
}

func TestRegistry_CleanupAllContinuesOnFailure(t *testing.T) {
	bad := &fakeDriver{disconnectErr: errors.New("close failed")}
	good := &fakeDriver{}

	reg := NewRegistry()
	reg.Register(New("bad", bad))
	reg.Register(New("good", good))

	reg.CleanupAll(context.Background())

	if _, _, disconnects := bad.counts(); disconnects != 1 {
		t.Errorf("bad disconnects = %d, want 1", disconnects)
	}
	if _, _, disconnects := good.counts(); disconnects != 1 {
		t.Errorf("good disconnects = %d, want 1", disconnects)
	}
}

func TestRegistry_ConcurrentRegisterDuringCheckAll(t *testing.T) {
	reg := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		reg.Register(New(name, &fakeDriver{}))
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			reg.Register(New("churn", &fakeDriver{}))
			reg.Unregister("churn")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			agg := reg.CheckAll(context.Background())
			if agg.TotalCount < 3 {
				t.Errorf("TotalCount = %d, want >= 3", agg.TotalCount)
			}
		}
	}()
	wg.Wait()
}

func TestRegistry_StatusAll(t *testing.T) {
	reg := NewRegistry()
	reg.Register(New("calendly", &fakeDriver{}))
	reg.Register(New("twitter", &fakeDriver{}))

	statuses := reg.StatusAll()
	if len(statuses) != 2 {
		t.Fatalf("StatusAll() returned %d entries, want 2", len(statuses))
	}
	if statuses["calendly"].ServiceName != "calendly" {
		t.Errorf("status name = %q", statuses["calendly"].ServiceName)
	}
	if statuses["twitter"].State != StateDisconnected {
		t.Errorf("fresh connector state = %v, want disconnected", statuses["twitter"].State)
	}
}
