// Package warmup runs a bounded background scheduler that periodically
// re-forecasts a configured list of regions so their Prometheus gauges
// never go stale between user-triggered requests. It shares the same
// concurrency caps as user traffic: Scheduler calls the same
// orchestrator.Orchestrator.Run a request handler would, so a warm-up
// tick competes for the same global semaphore rather than bypassing it.
package warmup

import (
	"context"
	"log"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/orchestrator"
)

// Scheduler periodically runs a forecast for every region in its
// warm-list.
type Scheduler struct {
	orchestrator *orchestrator.Orchestrator
	regions      []domain.Region
	request      orchestrator.Request
	interval     time.Duration
}

// New builds a Scheduler. regions is the warm-list; an empty list means
// the scheduler has nothing to do and Run returns immediately.
func New(orch *orchestrator.Orchestrator, regions []domain.Region, request orchestrator.Request, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{orchestrator: orch, regions: regions, request: request, interval: interval}
}

// Run blocks, ticking every s.interval and warming every configured
// region, until ctx is cancelled. Call it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	if len(s.regions) == 0 {
		return
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.warmAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.warmAll(ctx)
		}
	}
}

// warmAll runs one forecast per region. A region whose Run returns an
// error (such as the global concurrency cap being full) is skipped for
// this tick; a deadline yields a degraded result that is still
// published rather than an error — the
// next tick will retry it, so a transient saturation under user load
// never becomes a permanent gap in the dashboards.
func (s *Scheduler) warmAll(ctx context.Context) {
	for _, region := range s.regions {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.orchestrator.Run(ctx, region, s.request); err != nil {
			log.Printf("[warmup] WARNING: warm-up forecast for region %s skipped: %v", region.ID, err)
		}
	}
}
