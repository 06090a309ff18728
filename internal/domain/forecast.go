package domain

import "time"

// ForecastPoint is one day of a projected forecast horizon. Invariant
// (spec.md §8 property 6): Lower <= Point <= Upper, all clipped to [0,1].
type ForecastPoint struct {
	Date  Day     `json:"date"`
	Point float64 `json:"point"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// DataQuality summarizes how trustworthy a ForecastResult is.
type DataQuality struct {
	Completeness        float64 `json:"completeness"`          // fraction of sources that returned ok
	RegionalVarianceTag string  `json:"regional_variance_tag"` // set by the orchestrator from the registry classification of the sources that fetched ok
}

// ForecastResult is the full response of one forecast request
// (spec.md §3, §6).
type ForecastResult struct {
	RegionID     string               `json:"region_id"`
	CreatedAt    time.Time            `json:"created_at"`
	HorizonDays  int                  `json:"horizon_days"`
	History      HistorySeries        `json:"history"`
	Forecast     []ForecastPoint      `json:"forecast"`
	ModelName    string               `json:"model_name"`
	ModelParams  map[string]float64   `json:"model_params,omitempty"`
	Sources      []SourceFetchSummary `json:"sources"`
	DataQuality  DataQuality          `json:"data_quality"`
	Degraded     bool                 `json:"degraded"`
	DegradedReason string             `json:"degraded_reason,omitempty"`
}

// HistorySeries captures the composite plus every parent/child's daily
// history, keyed by node name, aligned to the same day range.
type HistorySeries struct {
	Days      []Day              `json:"days"`
	Composite []float64          `json:"composite"`
	Parents   map[string][]float64 `json:"parents"`
	Children  map[string][]float64 `json:"children"`
}
