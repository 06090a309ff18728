// Package config loads the environment-derived runtime options of
// spec.md §6. Region and source catalogs are file-based (see
// internal/registry) — this package covers only the operational knobs:
// cache sizing, concurrency caps, deadlines, offline mode and
// credentials.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime-tunable options for one process.
type Config struct {
	Host string
	Port int

	CacheMaxSize       int
	CacheTTLOverrides  map[string]time.Duration // source id -> TTL, from CACHE_TTL_MINUTES_<SOURCE>

	MaxConcurrentUpstream int
	MaxConcurrentRequests int
	ForecastDeadline      time.Duration

	OfflineMode bool

	// APIKeys maps a lower-cased source id to its configured credential,
	// read from <SOURCE>_API_KEY. Absence means missing_credentials.
	APIKeys map[string]string

	// JournalPath is the append-only NDJSON file path. Empty disables
	// journaling (spec.md §6).
	JournalPath string

	// RegionsFile / SourcesOverrideFile point at the TOML catalogs loaded
	// by internal/registry. Empty means "use the built-in defaults."
	RegionsFile       string
	SourcesOverrideFile string

	// DiskCachePath backs the optional sqlite L2 fetch-cache tier
	// (SPEC_FULL.md DOMAIN STACK). Empty disables the disk tier.
	DiskCachePath string
}

// DefaultConfig returns the baseline configuration before environment
// overrides are applied, mirroring the teacher's DefaultConfig()/
// LoadConfig() split in internal/daemon (now internal/config here).
func DefaultConfig() Config {
	return Config{
		Host:                  "0.0.0.0",
		Port:                  8080,
		CacheMaxSize:          2048,
		CacheTTLOverrides:     map[string]time.Duration{},
		MaxConcurrentUpstream: 8,
		MaxConcurrentRequests: 64,
		ForecastDeadline:      60 * time.Second,
		OfflineMode:           false,
		APIKeys:               map[string]string{},
		JournalPath:           "",
		RegionsFile:           "",
		SourcesOverrideFile:   "",
		DiskCachePath:         "",
	}
}

// Load builds a Config by reading the environment variables named in
// spec.md §6 on top of DefaultConfig(). It never fails — malformed
// numeric/bool values are ignored and the default is kept, since a
// misconfigured knob should degrade gracefully rather than prevent
// startup (only weight misconfiguration in the index computer is fatal,
// per spec.md §7).
func Load() Config {
	cfg := DefaultConfig()

	if v, ok := getenv("HOST"); ok {
		cfg.Host = v
	}
	if v, ok := getenvInt("PORT"); ok {
		cfg.Port = v
	}
	if v, ok := getenvInt("CACHE_MAX_SIZE"); ok && v > 0 {
		cfg.CacheMaxSize = v
	}
	if v, ok := getenvInt("MAX_CONCURRENT_UPSTREAM"); ok && v > 0 {
		cfg.MaxConcurrentUpstream = v
	}
	if v, ok := getenvInt("MAX_CONCURRENT_REQUESTS"); ok && v > 0 {
		cfg.MaxConcurrentRequests = v
	}
	if v, ok := getenvInt("FORECAST_DEADLINE_SECONDS"); ok && v > 0 {
		cfg.ForecastDeadline = time.Duration(v) * time.Second
	}
	if v, ok := getenvBool("OFFLINE_MODE"); ok {
		cfg.OfflineMode = v
	}
	if v, ok := getenv("JOURNAL_PATH"); ok {
		cfg.JournalPath = v
	}
	if v, ok := getenv("REGIONS_FILE"); ok {
		cfg.RegionsFile = v
	}
	if v, ok := getenv("SOURCES_OVERRIDE_FILE"); ok {
		cfg.SourcesOverrideFile = v
	}
	if v, ok := getenv("DISK_CACHE_PATH"); ok {
		cfg.DiskCachePath = v
	}

	// CACHE_TTL_MINUTES_<SOURCE> and <SOURCE>_API_KEY are scanned from
	// the full environment since the source set is open-ended (driven
	// by the registry, not known to this package).
	for _, kv := range os.Environ() {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, val := parts[0], parts[1]
		switch {
		case strings.HasPrefix(key, "CACHE_TTL_MINUTES_"):
			source := strings.ToLower(strings.TrimPrefix(key, "CACHE_TTL_MINUTES_"))
			if mins, err := strconv.Atoi(val); err == nil && mins > 0 {
				cfg.CacheTTLOverrides[source] = time.Duration(mins) * time.Minute
			}
		case strings.HasSuffix(key, "_API_KEY"):
			source := strings.ToLower(strings.TrimSuffix(key, "_API_KEY"))
			if val != "" {
				cfg.APIKeys[source] = val
			}
		}
	}

	return cfg
}

// APIKey returns the configured credential for sourceID, and whether one
// is configured.
func (c Config) APIKey(sourceID string) (string, bool) {
	v, ok := c.APIKeys[strings.ToLower(sourceID)]
	return v, ok
}

// TTLFor returns the configured TTL override for sourceID, and whether
// one is configured.
func (c Config) TTLFor(sourceID string) (time.Duration, bool) {
	v, ok := c.CacheTTLOverrides[strings.ToLower(sourceID)]
	return v, ok
}

func getenv(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func getenvInt(key string) (int, bool) {
	v, ok := getenv(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func getenvBool(key string) (bool, bool) {
	v, ok := getenv(key)
	if !ok {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}
