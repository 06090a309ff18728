package connectors

import (
	"math/rand"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// syntheticSeries deterministically derives a DailySeries from
// hash(source_id, region_id) so offline mode never touches the
// network and identical inputs always produce identical output
// (spec §4.1, §3.6 deterministic testing mode).
//
// Each feature gets its own sub-seed so unrelated features on the
// same source don't move in lockstep, and a mild day-of-week wave is
// layered in so forecast models have seasonality to pick up on.
func syntheticSeries(sourceID, regionID string, end domain.Day, windowDays int, features []string) domain.DailySeries {
	start := end.AddDays(-(windowDays - 1))
	series := domain.NewDailySeries(start, end, features)

	baseSeed := int64(xxhashSeed(sourceID + "|" + regionID))
	for fi, feature := range features {
		r := rand.New(rand.NewSource(baseSeed + int64(fi)*104729))
		level := 0.3 + r.Float64()*0.4
		for i := 0; i < series.Len(); i++ {
			wave := 0.05 * rand.New(rand.NewSource(baseSeed+int64(fi)*104729+int64(i%7))).Float64()
			noise := (r.Float64() - 0.5) * 0.08
			v := domain.Clamp01(level + wave + noise)
			series.Set(feature, i, v)
		}
	}
	return series
}

func xxhashSeed(s string) uint64 {
	h := fnvHash(s)
	return h
}

// fnvHash is a tiny deterministic string hash used only to seed the
// synthetic generator; it has no cryptographic or cache-key role
// (Fingerprint in fingerprint.go owns cache keys).
func fnvHash(s string) uint64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}
