// Package daemon is the composition root: it wires config, registries,
// connectors, cache, harmonizer, index computer, orchestrator, metrics
// publisher, journal, warm-up scheduler and API server into one runnable
// process, and owns the HTTP server's graceful-shutdown lifecycle.
package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/api"
	"github.com/fieldpulse/fieldpulse/internal/cache"
	"github.com/fieldpulse/fieldpulse/internal/config"
	"github.com/fieldpulse/fieldpulse/internal/connectors"
	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/harmonize"
	"github.com/fieldpulse/fieldpulse/internal/health"
	"github.com/fieldpulse/fieldpulse/internal/index"
	"github.com/fieldpulse/fieldpulse/internal/journal"
	"github.com/fieldpulse/fieldpulse/internal/metrics"
	"github.com/fieldpulse/fieldpulse/internal/orchestrator"
	"github.com/fieldpulse/fieldpulse/internal/registry"
	"github.com/fieldpulse/fieldpulse/internal/warmup"
)

// warmupInterval is how often the background scheduler refreshes the
// warm-list's gauges (SPEC_FULL.md supplemented feature 2).
const warmupInterval = 5 * time.Minute

// shutdownTimeout bounds how long Serve waits for in-flight requests to
// drain before forcing the HTTP server closed.
const shutdownTimeout = 30 * time.Second

// Daemon wires together every pipeline stage for one process.
type Daemon struct {
	Config  config.Config
	Regions *registry.RegionRegistry
	Sources *registry.SourceRegistry

	Connectors   map[string]domain.Connector
	Cache        *cache.Cache
	Harmonizer   *harmonize.Harmonizer
	Index        *index.Computer
	Publisher    *metrics.Publisher
	Journal      *journal.Journal
	Orchestrator *orchestrator.Orchestrator
	Warmup       *warmup.Scheduler
	Health       *health.Checker
	Server       *api.Server

	cancel context.CancelFunc
}

// New builds a Daemon from the process environment, mirroring the
// teacher's New()/NewWithConfig() split.
func New() (*Daemon, error) {
	return NewWithConfig(config.Load())
}

// NewWithConfig builds a Daemon from an explicit Config, so tests and
// the CLI's one-shot commands can wire a Daemon without touching the
// environment.
func NewWithConfig(cfg config.Config) (*Daemon, error) {
	regions, err := registry.LoadRegionRegistry(cfg.RegionsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	sources, err := registry.LoadSourceRegistry(cfg.SourcesOverrideFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}

	conns, err := connectors.BuildAll(sources, connectors.DefaultBaseURLs(), connectors.DefaultRetryConfig(), cfg.OfflineMode, cfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}

	var disk *cache.DiskTier
	if cfg.DiskCachePath != "" {
		disk, err = cache.OpenDiskTier(cfg.DiskCachePath)
		if err != nil {
			return nil, fmt.Errorf("%w: disk cache: %v", domain.ErrInvalidConfiguration, err)
		}
	}
	fetchCache := cache.New(cfg.CacheMaxSize, cfg, disk)

	harmonizer := harmonize.New(3650, harmonize.DefaultFillBudgets())

	idx, err := index.New(index.DefaultWeights())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}

	publisher := metrics.NewPublisher()

	jour, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return nil, fmt.Errorf("%w: journal: %v", domain.ErrInvalidConfiguration, err)
	}

	orch := orchestrator.New(sources, conns, fetchCache, harmonizer, idx, publisher, jour,
		cfg.MaxConcurrentUpstream, cfg.MaxConcurrentRequests, cfg.ForecastDeadline)

	warm := warmup.New(orch, regions.List(), orchestrator.DefaultRequest(), warmupInterval)

	checker := health.NewChecker(regions, sources, len(conns), disk)

	server := api.NewServer(orch, regions, sources)
	server.SetHealth(checker)

	return &Daemon{
		Config:       cfg,
		Regions:      regions,
		Sources:      sources,
		Connectors:   conns,
		Cache:        fetchCache,
		Harmonizer:   harmonizer,
		Index:        idx,
		Publisher:    publisher,
		Journal:      jour,
		Orchestrator: orch,
		Warmup:       warm,
		Health:       checker,
		Server:       server,
	}, nil
}

// Serve starts the HTTP API and the warm-up scheduler, and blocks until
// ctx is cancelled or SIGINT/SIGTERM arrives, then shuts down gracefully.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	go d.Warmup.Run(ctx)
	go d.Health.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.Host, d.Config.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()

		_ = httpServer.Shutdown(shutdownCtx)
		if d.Journal != nil {
			_ = d.Journal.Close()
		}
	}()

	fmt.Printf("fieldpulse serving on http://%s\n", addr)
	fmt.Printf("  Metrics: http://%s/metrics\n", addr)

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases daemon resources without starting the HTTP server,
// for one-shot CLI commands that built a Daemon just to reach its
// orchestrator.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
	if d.Journal != nil {
		_ = d.Journal.Close()
	}
}
