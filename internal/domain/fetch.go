package domain

import "time"

// FetchStatus is the outcome of a single connector invocation.
type FetchStatus string

const (
	FetchStatusOK    FetchStatus = "ok"
	FetchStatusEmpty FetchStatus = "empty"
	FetchStatusError FetchStatus = "error"
)

// SourceFetch is the uniform result of internal/connectors.Connector.Fetch.
// Exactly one of Series (status ok) or ErrorKind (status empty/error)
// carries meaning; see spec.md §4.1.
type SourceFetch struct {
	SourceID    string      `json:"source_id"`
	RegionID    string      `json:"region_id"`
	WindowDays  int         `json:"window_days"`
	Fingerprint string      `json:"fingerprint"`
	FetchedAt   time.Time   `json:"fetched_at"`
	Status      FetchStatus  `json:"status"`
	Series      *DailySeries `json:"series,omitempty"`
	ErrorKind   ErrorKind    `json:"error_kind,omitempty"`
}

// SourceFetchSummary reduces a SourceFetch to the fields exposed in the HTTP
// response's `data_sources` block (spec.md §6).
type SourceFetchSummary struct {
	SourceID    string    `json:"source_id"`
	Status      FetchStatus `json:"status"`
	Points      int       `json:"points"`
	LastFetched time.Time `json:"last_fetched"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
}

// Summarize produces the wire-level summary for a SourceFetch.
func (f SourceFetch) Summarize() SourceFetchSummary {
	points := 0
	if f.Series != nil {
		points = f.Series.Len()
	}
	return SourceFetchSummary{
		SourceID:    f.SourceID,
		Status:      f.Status,
		Points:      points,
		LastFetched: f.FetchedAt,
		ErrorKind:   f.ErrorKind,
	}
}

// Healthy reports whether this fetch should count as "ok" for the
// data_source_status gauge (spec.md §4.7): 1 for ok, 0 for empty/error.
func (f SourceFetch) Healthy() bool { return f.Status == FetchStatusOK }
