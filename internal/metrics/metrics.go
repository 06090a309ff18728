// Package metrics is the Prometheus metrics publisher of spec §4.7:
// one gauge/counter family per named series, all labeled by region,
// plus the monotonicity guard of spec §5 ("an older request that
// completes after a newer one MUST NOT overwrite newer metrics").
//
// Gauge/counter shape follows the teacher's
// internal/infra/metrics/metrics.go: promauto-registered package-level
// vars grouped under section dividers, namespaced consistently.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fieldpulse"

// ─── Behavior Index ─────────────────────────────────────────────────────────

var BehaviorIndex = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "behavior_index",
	Help:      "Latest composite behavior index value for a region, in [0,1].",
}, []string{"region"})

var ParentSubindexValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "parent_subindex_value",
	Help:      "Latest value of one parent sub-index.",
}, []string{"region", "parent"})

var ChildSubindexValue = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "child_subindex_value",
	Help:      "Latest value of one contributing child sub-index.",
}, []string{"region", "parent", "child"})

var SubindexContribution = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "subindex_contribution",
	Help:      "Renormalized weight of a child within its parent.",
}, []string{"region", "parent", "child"})

var BehaviorIndexDelta7d = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "behavior_index_delta_7d",
	Help:      "7-day rate of change of the composite behavior index.",
}, []string{"region"})

var BehaviorIndexDelta30d = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "behavior_index_delta_30d",
	Help:      "30-day rate of change of the composite behavior index.",
}, []string{"region"})

var BehaviorIndexDelta90d = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "behavior_index_delta_90d",
	Help:      "90-day rate of change of the composite behavior index.",
}, []string{"region"})

var BehaviorIndexVolatility30d = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "behavior_index_volatility_30d",
	Help:      "30-day rolling standard deviation of the composite behavior index.",
}, []string{"region"})

// ─── Data Sources ───────────────────────────────────────────────────────────

var DataSourceStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "data_source_status",
	Help:      "1 if the source's last fetch was ok, 0 for empty/error.",
}, []string{"region", "source"})

var DataSourceLastSuccessTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "data_source_last_success_timestamp_seconds",
	Help:      "Unix timestamp of the source's last ok fetch for a region.",
}, []string{"region", "source"})

// ─── Forecasts ──────────────────────────────────────────────────────────────

var ForecastPointsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "forecast_points_generated_total",
	Help:      "Total forecast points generated, by model.",
}, []string{"region", "model"})

var ForecastLastUpdatedTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "forecast_last_updated_timestamp_seconds",
	Help:      "Unix timestamp this region's forecast was last published.",
}, []string{"region"})

// ─── Degradation ────────────────────────────────────────────────────────────

var Degraded = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "forecast_degraded",
	Help:      "1 if the most recently published forecast for a region was degraded.",
}, []string{"region"})
