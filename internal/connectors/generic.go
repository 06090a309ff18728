package connectors

import (
	"context"
	"strconv"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// APIKeyLookup resolves a source's credential by id, mirroring
// config.Config.APIKey.
type APIKeyLookup func(sourceID string) (string, bool)

// generic is the shared domain.Connector implementation every
// per-source file in this package configures and returns. It owns
// the common flow (spec §4.1): missing-credential short-circuit,
// fingerprinting, offline synthetic generation, and the retry/backoff
// harness around a live REST call. Only the endpoint, feature list,
// and geo requirements vary by source.
type generic struct {
	def      domain.SourceDefinition
	retry    RetryConfig
	offline  bool
	rest     *restClient
	path     string
	features []string
	apiKeyFn APIKeyLookup
	needsGeo bool
}

func (c *generic) Describe() domain.SourceDefinition { return c.def }

func (c *generic) Fetch(ctx context.Context, regionID string, lat, lon float64, windowDays int) domain.SourceFetch {
	now := time.Now().UTC()
	end := domain.NewDay(now)

	geoParts := map[string]string{}
	if c.needsGeo {
		geoParts = GeoParts(lat, lon)
	}
	fp := Fingerprint(c.def.ID, windowDays, geoParts)

	base := domain.SourceFetch{
		SourceID:    c.def.ID,
		RegionID:    regionID,
		WindowDays:  windowDays,
		Fingerprint: fp,
		FetchedAt:   now,
	}

	if c.def.RequiresKey {
		if c.apiKeyFn == nil {
			return withMissingCredentials(base)
		}
		if _, ok := c.apiKeyFn(c.def.ID); !ok {
			return withMissingCredentials(base)
		}
	}

	if c.offline {
		series := syntheticSeries(c.def.ID, regionID, end, windowDays, c.features)
		base.Status = domain.FetchStatusOK
		base.Series = &series
		return base
	}

	apiKey := ""
	if c.apiKeyFn != nil {
		apiKey, _ = c.apiKeyFn(c.def.ID)
	}

	series, kind, err := runWithRetry(ctx, c.retry, func(attemptCtx context.Context) (domain.DailySeries, error) {
		query := map[string]string{"window_days": strconv.Itoa(windowDays)}
		if c.needsGeo {
			query["lat"] = GeoParts(lat, lon)["lat"]
			query["lon"] = GeoParts(lat, lon)["lon"]
		}
		resp, err := c.rest.fetch(attemptCtx, c.path, apiKey, query)
		if err != nil {
			return domain.DailySeries{}, err
		}
		start := end.AddDays(-(windowDays - 1))
		return toDailySeries(resp, start, end, c.features)
	})
	if err != nil {
		base.Status = domain.FetchStatusError
		base.ErrorKind = kind
		return base
	}

	if seriesIsEmpty(series) {
		base.Status = domain.FetchStatusEmpty
		return base
	}
	base.Status = domain.FetchStatusOK
	base.Series = &series
	return base
}

func withMissingCredentials(base domain.SourceFetch) domain.SourceFetch {
	base.Status = domain.FetchStatusEmpty
	base.ErrorKind = domain.ErrorKindMissingCredentials
	return base
}

func seriesIsEmpty(s domain.DailySeries) bool {
	for _, feature := range s.Features {
		for i := 0; i < s.Len(); i++ {
			if v, ok := s.Get(feature, i); ok && domain.IsFinite(v) {
				return false
			}
		}
	}
	return true
}
