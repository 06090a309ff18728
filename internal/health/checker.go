// Package health provides periodic liveness checks over the
// forecasting pipeline's own dependencies (cache, registries,
// connector wiring), separate from any single request's success or
// failure.
package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/cache"
	"github.com/fieldpulse/fieldpulse/internal/registry"
)

// Check defines a single named health check.
type Check struct {
	Name    string
	CheckFn func(ctx context.Context) error
}

// Status is the result of one health check run.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs periodic health checks and caches the latest statuses
// so GET /health can read them without blocking on a fresh check.
type Checker struct {
	mu       sync.RWMutex
	checks   []Check
	statuses []Status
	interval time.Duration
}

// NewChecker builds the standard checks: the region and source
// catalogs are non-empty, every registered source has a connector, and
// (if a disk cache tier is configured) it is reachable.
func NewChecker(regions *registry.RegionRegistry, sources *registry.SourceRegistry, connectorCount int, diskCache *cache.DiskTier) *Checker {
	checks := []Check{
		{
			Name: "regions_loaded",
			CheckFn: func(ctx context.Context) error {
				if len(regions.List()) == 0 {
					return fmt.Errorf("no regions registered")
				}
				return nil
			},
		},
		{
			Name: "sources_loaded",
			CheckFn: func(ctx context.Context) error {
				if len(sources.List()) == 0 {
					return fmt.Errorf("no sources registered")
				}
				return nil
			},
		},
		{
			Name: "connectors_registered",
			CheckFn: func(ctx context.Context) error {
				want := len(sources.List())
				if connectorCount != want {
					return fmt.Errorf("%d connectors registered, want %d", connectorCount, want)
				}
				return nil
			},
		},
	}
	if diskCache != nil {
		checks = append(checks, Check{
			Name: "disk_cache",
			CheckFn: func(ctx context.Context) error {
				return diskCache.Ping()
			},
		})
	}

	return &Checker{interval: 60 * time.Second, checks: checks}
}

// Run starts the health check loop. Call in a goroutine; it returns
// when ctx is cancelled.
func (c *Checker) Run(ctx context.Context) {
	c.runAll(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.runAll(ctx)
		}
	}
}

func (c *Checker) runAll(ctx context.Context) {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{Name: check.Name, CheckedAt: time.Now()}
		if err := check.CheckFn(ctx); err != nil {
			s.Error = err.Error()
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}

	c.mu.Lock()
	c.statuses = statuses
	c.mu.Unlock()
}

// Statuses returns a copy of the latest health check results.
func (c *Checker) Statuses() []Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]Status, len(c.statuses))
	copy(result, c.statuses)
	return result
}

// IsHealthy reports whether every check last passed. Vacuously true
// before the first run.
func (c *Checker) IsHealthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, s := range c.statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}
