package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers. Infrastructure
// implements them; the orchestrator depends on them, never a concrete
// type, so each layer can be swapped or mocked independently (offline
// mode, tests).

// Connector is the uniform contract every source connector satisfies
// (spec.md §4.1): given geo + window, return a SourceFetch that never
// raises — failures are folded into Status/ErrorKind.
type Connector interface {
	// Fetch retrieves a source's series for one region.
	Fetch(ctx context.Context, regionID string, lat, lon float64, windowDays int) SourceFetch

	// Describe returns this connector's static registry definition.
	Describe() SourceDefinition
}

// Loader fetches a SourceFetch on a cache miss.
type Loader func(ctx context.Context) SourceFetch

// Cache abstracts the fetch cache so the orchestrator never depends on
// its LRU/TTL/disk-tier implementation details.
type Cache interface {
	// GetOrFetch returns the cached SourceFetch for fingerprint, calling
	// loader at most once across concurrent callers (spec.md §4.3).
	GetOrFetch(ctx context.Context, fingerprint string, load Loader) SourceFetch
}

// Classification declares whether a source's output varies by region —
// enforced by the variance probe (spec.md §4.2, GLOSSARY).
type Classification string

const (
	ClassificationGlobal   Classification = "GLOBAL"
	ClassificationNational Classification = "NATIONAL"
	ClassificationRegional Classification = "REGIONAL"
)

// SourceDefinition is the immutable catalog entry for one connector
// (spec.md §4.2).
type SourceDefinition struct {
	ID                 string
	Name               string
	Category           string
	Classification     Classification
	RequiresKey        bool
	CanRunWithoutKey    bool
	GeoInputsUsed      []string
	CacheKeyFields     []string
	Description        string
	// MobilitySignalKind distinguishes, for mobility-category sources,
	// whether the raw value is already an inverted "disruption" signal
	// or a raw "activity" share that the index computer must invert
	// (spec.md §9 Open Question on mobility inversion).
	MobilitySignalKind string
}
