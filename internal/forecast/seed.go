package forecast

// Seed derives a deterministic seed from (region_id, horizon), per
// spec §3.6/§4.6's "offline mode seeds any pseudo-random state from
// hash(region_id, horizon) so runs are reproducible." The forecast
// models themselves have no random component today, but callers
// thread this through Forecast's seed parameter so a future
// stochastic addition (e.g. a bootstrap interval estimator) inherits
// the same determinism guarantee without an API change.
func Seed(regionID string, horizon int) int64 {
	var h uint64 = 1469598103934665603
	for i := 0; i < len(regionID); i++ {
		h ^= uint64(regionID[i])
		h *= 1099511628211
	}
	h ^= uint64(horizon)
	h *= 1099511628211
	return int64(h & 0x7fffffffffffffff)
}
