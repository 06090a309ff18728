// Package connectors implements the source connector contract (spec
// §4.1) for every catalog entry in internal/registry, plus the shared
// retry/backoff/timeout harness and offline synthetic-series generator
// they all build on.
package connectors

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint computes the canonical cache key for a fetch: a hash of
// the source id, the geo inputs the source actually declares it uses,
// the window, and any extra registry key fields. Two distant REGIONAL
// fetches must hash differently; two GLOBAL/NATIONAL fetches that
// ignore geo must hash identically regardless of region.
func Fingerprint(sourceID string, windowDays int, parts map[string]string) string {
	keys := make([]string, 0, len(parts))
	for k := range parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := xxhash.New()
	fmt.Fprintf(h, "source=%s;window=%d", sourceID, windowDays)
	for _, k := range keys {
		fmt.Fprintf(h, ";%s=%s", k, parts[k])
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// GeoParts builds the part map for a REGIONAL source keyed on lat/lon,
// rounded to 2 decimal places so cache keys are stable across floating
// point noise in repeated calls for the same region.
func GeoParts(lat, lon float64) map[string]string {
	return map[string]string{
		"lat": strconv.FormatFloat(lat, 'f', 2, 64),
		"lon": strconv.FormatFloat(lon, 'f', 2, 64),
	}
}
