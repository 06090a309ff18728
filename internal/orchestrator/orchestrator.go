// Package orchestrator drives one forecast request end to end (spec
// §4.8, §5): fan out connector fetches with bounded parallelism,
// harmonize, compose the behavior index, forecast the horizon,
// publish metrics, and append a journal record. It is the only
// package that touches every other pipeline stage. Connectors and the
// fetch cache are reached through the domain.Connector and domain.Cache
// interfaces; the harmonizer, index computer, metrics publisher and
// journal are held as concrete types.
package orchestrator

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/connectors"
	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/forecast"
	"github.com/fieldpulse/fieldpulse/internal/harmonize"
	"github.com/fieldpulse/fieldpulse/internal/index"
	"github.com/fieldpulse/fieldpulse/internal/journal"
	"github.com/fieldpulse/fieldpulse/internal/metrics"
	"github.com/fieldpulse/fieldpulse/internal/registry"
)

// Request is the validated input to one forecast run (spec §6 POST
// /forecast body, minus region_name/region_id which are resolved to a
// domain.Region by the caller before Run is invoked).
type Request struct {
	DaysBack       int
	ForecastHorizon int
}

// DefaultRequest mirrors spec §6's declared defaults.
func DefaultRequest() Request {
	return Request{DaysBack: 365, ForecastHorizon: 7}
}

// Validate enforces spec §6's declared input ranges, independent of
// whatever validation the HTTP layer also performs — Run must be safe
// to call directly (the CLI and self-test do so without going through
// the API).
func (r Request) Validate() error {
	if r.DaysBack < 1 || r.DaysBack > 3650 {
		return fmt.Errorf("%w: days_back %d out of range [1,3650]", domain.ErrInvalidInput, r.DaysBack)
	}
	if r.ForecastHorizon < 1 || r.ForecastHorizon > 90 {
		return fmt.Errorf("%w: forecast_horizon %d out of range [1,90]", domain.ErrInvalidInput, r.ForecastHorizon)
	}
	return nil
}

// Orchestrator owns the wiring between pipeline stages and the two
// process-wide concurrency caps of spec §5: bounded upstream fan-out
// per request, and a bounded number of simultaneous requests.
type Orchestrator struct {
	sources    *registry.SourceRegistry
	connectors map[string]domain.Connector
	cache      domain.Cache
	harmonizer *harmonize.Harmonizer
	index      *index.Computer
	publisher  *metrics.Publisher
	journal    *journal.Journal

	maxConcurrentUpstream int
	deadline              time.Duration
	globalSem             chan struct{}
}

// New builds an Orchestrator. maxConcurrentRequests sizes the global
// semaphore; Run returns ErrConcurrencySaturated immediately (never
// blocking) once it is full, per spec §6's 503 status code.
func New(
	sources *registry.SourceRegistry,
	conns map[string]domain.Connector,
	cache domain.Cache,
	harmonizer *harmonize.Harmonizer,
	idx *index.Computer,
	publisher *metrics.Publisher,
	jour *journal.Journal,
	maxConcurrentUpstream int,
	maxConcurrentRequests int,
	deadline time.Duration,
) *Orchestrator {
	if maxConcurrentUpstream < 1 {
		maxConcurrentUpstream = 1
	}
	if maxConcurrentRequests < 1 {
		maxConcurrentRequests = 1
	}
	return &Orchestrator{
		sources:               sources,
		connectors:            conns,
		cache:                 cache,
		harmonizer:            harmonizer,
		index:                 idx,
		publisher:             publisher,
		journal:               jour,
		maxConcurrentUpstream: maxConcurrentUpstream,
		deadline:              deadline,
		globalSem:             make(chan struct{}, maxConcurrentRequests),
	}
}

// fetchOutcome pairs a source id with its fetch result, used to
// collect the bounded fan-out without a shared map under lock.
type fetchOutcome struct {
	sourceID string
	fetch    domain.SourceFetch
}

// Run executes the full state machine for one region. It never
// returns an error for upstream or computation failures — those are
// folded into a degraded ForecastResult per spec §7's propagation
// policy. The only errors Run returns are invalid_input (caller bug)
// and ErrConcurrencySaturated (caller should retry later); the index
// computer's weights are validated earlier, by index.New.
func (o *Orchestrator) Run(ctx context.Context, region domain.Region, req Request) (domain.ForecastResult, error) {
	if err := req.Validate(); err != nil {
		return domain.ForecastResult{}, err
	}
	if err := region.Validate(); err != nil {
		return domain.ForecastResult{}, err
	}

	select {
	case o.globalSem <- struct{}{}:
	default:
		return domain.ForecastResult{}, domain.ErrConcurrencySaturated
	}
	defer func() { <-o.globalSem }()

	ctx, cancel := context.WithTimeout(ctx, o.deadline)
	defer cancel()

	stage := StageIdle
	transition := func(s Stage) {
		stage = s
		if s == StageDegraded || s == StageFailed {
			log.Printf("[orchestrator] region %s entered stage %s", region.ID, s)
		}
	}

	transition(StageFetching)
	now := time.Now().UTC()
	end := domain.NewDay(now)
	start := end.AddDays(-(req.DaysBack - 1))
	window := harmonize.Window{Start: start, End: end}

	fetches, deadlineHit := o.fetchAll(ctx, region, req.DaysBack)

	transition(StageHarmonizing)
	trimmed := o.harmonizer.Trim(window)
	harmonized := o.harmonizer.Harmonize(fetches, trimmed)
	historyDays := domain.DaysBetween(trimmed.Start, trimmed.End) + 1

	transition(StageComposing)
	bySource := make(map[string]index.SourceSeries, len(harmonized))
	for _, h := range harmonized {
		if !h.Excluded {
			bySource[h.SourceID] = h.Series
		}
	}
	composite, parents, children, _ := o.index.ComputeHistory(historyDays, bySource)
	compositeNode, compositeDegraded := o.index.Compute(historyDays-1, bySource)

	transition(StageForecasting)
	seed := forecast.Seed(region.ID, req.ForecastHorizon)
	fr := forecast.Forecast(composite, req.ForecastHorizon, seed)
	forecastPoints := make([]domain.ForecastPoint, req.ForecastHorizon)
	for i := 0; i < req.ForecastHorizon; i++ {
		forecastPoints[i] = domain.ForecastPoint{
			Date:  end.AddDays(i + 1),
			Point: fr.Point[i],
			Lower: fr.Lower[i],
			Upper: fr.Upper[i],
		}
	}

	days := make([]domain.Day, historyDays)
	for i := 0; i < historyDays; i++ {
		days[i] = trimmed.Start.AddDays(i)
	}

	summaries := make([]domain.SourceFetchSummary, 0, len(fetches))
	for _, f := range fetches {
		summaries = append(summaries, f.Summarize())
	}

	degraded := compositeDegraded
	degradedReason := ""
	if deadlineHit {
		degraded = true
		degradedReason = string(domain.ErrorKindDeadlineExceeded)
	} else if compositeDegraded {
		degradedReason = string(domain.ErrorKindAllSourcesMissing)
	}
	if degraded {
		transition(StageDegraded)
	}

	result := domain.ForecastResult{
		RegionID:    region.ID,
		CreatedAt:   now,
		HorizonDays: req.ForecastHorizon,
		History: domain.HistorySeries{
			Days:      days,
			Composite: composite,
			Parents:   parents,
			Children:  children,
		},
		Forecast:       forecastPoints,
		ModelName:      fr.ModelName,
		ModelParams:    fr.ModelParams,
		Sources:        summaries,
		DataQuality:    dataQuality(fetches, o.sources),
		Degraded:       degraded,
		DegradedReason: degradedReason,
	}

	transition(StagePublishing)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[orchestrator] WARNING: metrics publish panicked for region %s at stage %s: %v", region.ID, stage, r)
			}
		}()
		if o.publisher != nil {
			o.publisher.Publish(result, compositeNode)
		}
	}()

	transition(StageJournaling)
	func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[orchestrator] WARNING: journal append panicked for region %s at stage %s: %v", region.ID, stage, r)
			}
		}()
		if o.journal != nil {
			o.journal.Append(result, requestFingerprint(region, req))
		}
	}()

	transition(StageDone)
	return result, nil
}

// fetchAll runs one connector call per registered source, bounded to
// maxConcurrentUpstream concurrent upstream calls (spec §5). It
// returns whatever fetches completed before ctx's deadline; sources
// still in flight when ctx is cancelled are recorded as
// upstream_unavailable rather than silently dropped, and deadlineHit
// reports whether that happened.
func (o *Orchestrator) fetchAll(ctx context.Context, region domain.Region, windowDays int) ([]domain.SourceFetch, bool) {
	defs := o.sources.List()
	sem := make(chan struct{}, o.maxConcurrentUpstream)
	results := make(chan fetchOutcome, len(defs))

	var wg sync.WaitGroup
	for _, def := range defs {
		conn, ok := o.connectors[def.ID]
		if !ok {
			results <- fetchOutcome{sourceID: def.ID, fetch: unregisteredFetch(def, region)}
			continue
		}
		wg.Add(1)
		go func(def domain.SourceDefinition, conn domain.Connector) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- fetchOutcome{sourceID: def.ID, fetch: deadlineFetch(def, region, windowDays)}
				return
			}
			defer func() { <-sem }()

			fp := fingerprintFor(def, region, windowDays)
			loader := func(loadCtx context.Context) domain.SourceFetch {
				return conn.Fetch(loadCtx, region.ID, region.Lat, region.Lon, windowDays)
			}
			fetch := o.cache.GetOrFetch(ctx, fp, loader)
			results <- fetchOutcome{sourceID: def.ID, fetch: fetch}
		}(def, conn)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]domain.SourceFetch, 0, len(defs))
	for r := range results {
		fetch := r.fetch
		if fetch.Status == domain.FetchStatusError && fetch.ErrorKind == domain.ErrorKindDeadlineExceeded {
			fetch.ErrorKind = domain.ErrorKindUpstreamUnavailable
		}
		out = append(out, fetch)
	}
	return out, ctx.Err() != nil
}

// fingerprintFor derives the same cache fingerprint the connector
// itself computes internally (internal/connectors.generic.Fetch),
// using the registry's declared classification rather than reaching
// into connector internals. Per spec.md §4.1, a GLOBAL or NATIONAL
// source MUST ignore lat/lon — only a REGIONAL source's fingerprint
// varies by coordinates; NATIONAL sources like fuelprices declare
// GeoInputsUsed: []string{"country"}, which is not a lat/lon input.
func fingerprintFor(def domain.SourceDefinition, region domain.Region, windowDays int) string {
	geoParts := map[string]string{}
	if def.Classification == domain.ClassificationRegional {
		geoParts = connectors.GeoParts(region.Lat, region.Lon)
	}
	return connectors.Fingerprint(def.ID, windowDays, geoParts)
}

// requestFingerprint identifies the overall request for the journal
// record, distinct from any single source's cache fingerprint.
func requestFingerprint(region domain.Region, req Request) string {
	return connectors.Fingerprint("request:"+region.ID, req.DaysBack, map[string]string{
		"horizon": fmt.Sprintf("%d", req.ForecastHorizon),
	})
}

func unregisteredFetch(def domain.SourceDefinition, region domain.Region) domain.SourceFetch {
	return domain.SourceFetch{
		SourceID:  def.ID,
		RegionID:  region.ID,
		FetchedAt: time.Now().UTC(),
		Status:    domain.FetchStatusError,
		ErrorKind: domain.ErrorKindInvalidConfiguration,
	}
}

func deadlineFetch(def domain.SourceDefinition, region domain.Region, windowDays int) domain.SourceFetch {
	return domain.SourceFetch{
		SourceID:   def.ID,
		RegionID:   region.ID,
		WindowDays: windowDays,
		FetchedAt:  time.Now().UTC(),
		Status:     domain.FetchStatusError,
		ErrorKind:  domain.ErrorKindDeadlineExceeded,
	}
}

// dataQuality summarizes completeness and a regional-variance tag
// (spec §3's ForecastResult.DataQuality) from the raw fetch results.
func dataQuality(fetches []domain.SourceFetch, sources *registry.SourceRegistry) domain.DataQuality {
	if len(fetches) == 0 {
		return domain.DataQuality{Completeness: 0, RegionalVarianceTag: "none"}
	}
	ok := 0
	regionalOK := false
	for _, f := range fetches {
		if f.Status != domain.FetchStatusOK {
			continue
		}
		ok++
		if def, found := sources.Get(f.SourceID); found && def.Classification == domain.ClassificationRegional {
			regionalOK = true
		}
	}
	tag := "none"
	switch {
	case regionalOK:
		tag = "regional"
	case ok > 0:
		tag = "national_or_global"
	}
	return domain.DataQuality{
		Completeness:        float64(ok) / float64(len(fetches)),
		RegionalVarianceTag: tag,
	}
}
