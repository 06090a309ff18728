package health

import (
	"context"
	"testing"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/cache"
	"github.com/fieldpulse/fieldpulse/internal/registry"
)

func testRegistries(t *testing.T) (*registry.RegionRegistry, *registry.SourceRegistry) {
	t.Helper()
	regions, err := registry.NewRegionRegistry(registry.DefaultRegions())
	if err != nil {
		t.Fatalf("NewRegionRegistry() error: %v", err)
	}
	sources, err := registry.NewSourceRegistry(registry.DefaultSourceDefinitions())
	if err != nil {
		t.Fatalf("NewSourceRegistry() error: %v", err)
	}
	return regions, sources
}

func TestNewChecker(t *testing.T) {
	regions, sources := testRegistries(t)

	c := NewChecker(regions, sources, len(sources.List()), nil)
	if c == nil {
		t.Fatal("NewChecker() returned nil")
	}
	if len(c.checks) != 3 {
		t.Errorf("checks = %d, want 3 (no disk cache configured)", len(c.checks))
	}
}

func TestNewCheckerWithDiskCacheAddsCheck(t *testing.T) {
	regions, sources := testRegistries(t)
	disk, err := cache.OpenDiskTier(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskTier() error: %v", err)
	}
	t.Cleanup(func() { disk.Close() })

	c := NewChecker(regions, sources, len(sources.List()), disk)
	if len(c.checks) != 4 {
		t.Errorf("checks = %d, want 4 (disk cache configured)", len(c.checks))
	}
}

func TestChecker_RunAllHealthy(t *testing.T) {
	regions, sources := testRegistries(t)
	c := NewChecker(regions, sources, len(sources.List()), nil)
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 3 {
		t.Fatalf("Statuses() = %d, want 3", len(statuses))
	}
	for _, s := range statuses {
		if !s.Healthy {
			t.Errorf("check %q should be healthy, got error: %s", s.Name, s.Error)
		}
	}
}

func TestChecker_IsHealthy_AllPass(t *testing.T) {
	regions, sources := testRegistries(t)
	c := NewChecker(regions, sources, len(sources.List()), nil)
	c.runAll(context.Background())

	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true when all checks pass")
	}
}

func TestChecker_IsHealthy_BeforeRun(t *testing.T) {
	regions, sources := testRegistries(t)
	c := NewChecker(regions, sources, len(sources.List()), nil)

	if !c.IsHealthy() {
		t.Error("IsHealthy() should be true before first run (no statuses)")
	}
}

func TestChecker_ConnectorMismatchFails(t *testing.T) {
	regions, sources := testRegistries(t)
	c := NewChecker(regions, sources, len(sources.List())-1, nil)
	c.runAll(context.Background())

	statuses := c.Statuses()
	found := false
	for _, s := range statuses {
		if s.Name == "connectors_registered" {
			found = true
			if s.Healthy {
				t.Error("connectors_registered should fail on a count mismatch")
			}
		}
	}
	if !found {
		t.Error("connectors_registered check not found in statuses")
	}
}

func TestChecker_EmptyRegionRegistryFails(t *testing.T) {
	regions, err := registry.NewRegionRegistry(nil)
	if err != nil {
		t.Fatalf("NewRegionRegistry(nil) error: %v", err)
	}
	_, sources := testRegistries(t)
	c := NewChecker(regions, sources, len(sources.List()), nil)
	c.runAll(context.Background())

	if c.IsHealthy() {
		t.Error("IsHealthy() should be false when no regions are registered")
	}
}

func TestChecker_DiskCacheCheckReflectsPing(t *testing.T) {
	regions, sources := testRegistries(t)
	disk, err := cache.OpenDiskTier(t.TempDir())
	if err != nil {
		t.Fatalf("OpenDiskTier() error: %v", err)
	}
	t.Cleanup(func() { disk.Close() })

	c := NewChecker(regions, sources, len(sources.List()), disk)
	c.runAll(context.Background())

	statuses := c.Statuses()
	found := false
	for _, s := range statuses {
		if s.Name == "disk_cache" {
			found = true
			if !s.Healthy {
				t.Errorf("disk_cache check should be healthy, got: %s", s.Error)
			}
		}
	}
	if !found {
		t.Error("disk_cache check not found in statuses")
	}
}

func TestChecker_CustomCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{
				Name: "always_pass",
				CheckFn: func(ctx context.Context) error {
					return nil
				},
			},
		},
	}
	c.runAll(context.Background())

	statuses := c.Statuses()
	if len(statuses) != 1 {
		t.Fatalf("statuses = %d, want 1", len(statuses))
	}
	if !statuses[0].Healthy {
		t.Error("always_pass check should be healthy")
	}
}

func TestChecker_FailingCheck(t *testing.T) {
	c := &Checker{
		checks: []Check{
			{
				Name: "always_fail",
				CheckFn: func(ctx context.Context) error {
					return context.DeadlineExceeded
				},
			},
		},
	}
	c.runAll(context.Background())

	statuses := c.Statuses()
	if statuses[0].Healthy {
		t.Error("always_fail check should not be healthy")
	}
	if statuses[0].Error == "" {
		t.Error("error message should be populated")
	}
}

func TestChecker_StatusesCopy(t *testing.T) {
	regions, sources := testRegistries(t)
	c := NewChecker(regions, sources, len(sources.List()), nil)
	c.runAll(context.Background())

	s1 := c.Statuses()
	s2 := c.Statuses()

	if len(s1) > 0 {
		s1[0].Healthy = false
		if !s2[0].Healthy {
			t.Error("Statuses() should return a copy, not a reference")
		}
	}
}

func TestChecker_RunStopsOnContextCancel(t *testing.T) {
	regions, sources := testRegistries(t)
	c := NewChecker(regions, sources, len(sources.List()), nil)
	c.interval = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after context cancellation")
	}
}
