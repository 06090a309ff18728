package metrics

import (
	"math"
	"sync"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// Publisher applies a completed ForecastResult to the package-level
// gauges, enforcing spec §5's ordering guarantee: a request that
// completes after a newer one for the same region must not overwrite
// the newer values. One Publisher is shared across all requests in a
// process, guarded by its own mutex — the only cross-request mutable
// state this package owns besides the Prometheus vectors themselves.
type Publisher struct {
	mu          sync.Mutex
	lastApplied map[string]time.Time
}

// NewPublisher builds an empty Publisher.
func NewPublisher() *Publisher {
	return &Publisher{lastApplied: make(map[string]time.Time)}
}

// Publish records result's metrics, unless a later-timestamped result
// for the same region has already been published. regionID must be
// non-empty and not "None" — callers validate this at ingress
// (spec §4.7 cardinality invariants); Publish trusts its caller.
func (p *Publisher) Publish(result domain.ForecastResult, composite *domain.SubIndexNode) {
	p.mu.Lock()
	if last, ok := p.lastApplied[result.RegionID]; ok && !result.CreatedAt.After(last) {
		p.mu.Unlock()
		return
	}
	p.lastApplied[result.RegionID] = result.CreatedAt
	p.mu.Unlock()

	region := result.RegionID

	BehaviorIndex.WithLabelValues(region).Set(composite.Value)
	degradedValue := 0.0
	if result.Degraded {
		degradedValue = 1.0
	}
	Degraded.WithLabelValues(region).Set(degradedValue)

	for _, parent := range composite.Children {
		if parent.Missing {
			continue
		}
		ParentSubindexValue.WithLabelValues(region, parent.Name).Set(parent.Value)
		for _, child := range parent.Children {
			if child.Missing {
				continue
			}
			ChildSubindexValue.WithLabelValues(region, parent.Name, child.Name).Set(child.Value)
			SubindexContribution.WithLabelValues(region, parent.Name, child.Name).Set(child.Weight)
		}
	}

	for _, summary := range result.Sources {
		status := 0.0
		if summary.Status == domain.FetchStatusOK {
			status = 1.0
		}
		DataSourceStatus.WithLabelValues(region, summary.SourceID).Set(status)
		if summary.Status == domain.FetchStatusOK {
			DataSourceLastSuccessTimestamp.WithLabelValues(region, summary.SourceID).Set(float64(summary.LastFetched.Unix()))
		}
	}

	ForecastPointsGenerated.WithLabelValues(region, result.ModelName).Add(float64(len(result.Forecast)))
	ForecastLastUpdatedTimestamp.WithLabelValues(region).Set(float64(result.CreatedAt.Unix()))

	delta7, delta30, delta90, vol30 := deltasAndVolatility(result.History.Composite)
	BehaviorIndexDelta7d.WithLabelValues(region).Set(delta7)
	BehaviorIndexDelta30d.WithLabelValues(region).Set(delta30)
	BehaviorIndexDelta90d.WithLabelValues(region).Set(delta90)
	BehaviorIndexVolatility30d.WithLabelValues(region).Set(vol30)
}

// deltasAndVolatility computes the 7/30/90-day rate of change and a
// 30-day rolling standard deviation from a composite history series,
// in chronological order with the most recent value last. Any window
// longer than the series itself is simply clamped to what's
// available, rather than reported as zero.
func deltasAndVolatility(composite []float64) (delta7, delta30, delta90 float64, vol30 float64) {
	n := len(composite)
	if n == 0 {
		return 0, 0, 0, 0
	}
	latest := composite[n-1]
	delta7 = deltaOver(composite, latest, 7)
	delta30 = deltaOver(composite, latest, 30)
	delta90 = deltaOver(composite, latest, 90)
	vol30 = rollingStd(composite, 30)
	return delta7, delta30, delta90, vol30
}

func deltaOver(composite []float64, latest float64, window int) float64 {
	n := len(composite)
	idx := n - 1 - window
	if idx < 0 {
		idx = 0
	}
	return latest - composite[idx]
}

func rollingStd(composite []float64, window int) float64 {
	n := len(composite)
	if window > n {
		window = n
	}
	if window < 2 {
		return 0
	}
	sample := composite[n-window:]
	mean := 0.0
	for _, v := range sample {
		mean += v
	}
	mean /= float64(len(sample))

	var ss float64
	for _, v := range sample {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(sample)-1))
}
