package config

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CacheMaxSize != 2048 {
		t.Errorf("CacheMaxSize = %d, want 2048", cfg.CacheMaxSize)
	}
	if cfg.MaxConcurrentUpstream != 8 {
		t.Errorf("MaxConcurrentUpstream = %d, want 8", cfg.MaxConcurrentUpstream)
	}
	if cfg.ForecastDeadline != 60*time.Second {
		t.Errorf("ForecastDeadline = %v, want 60s", cfg.ForecastDeadline)
	}
	if cfg.OfflineMode {
		t.Error("OfflineMode should default to false")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("CACHE_MAX_SIZE", "512")
	t.Setenv("MAX_CONCURRENT_UPSTREAM", "4")
	t.Setenv("FORECAST_DEADLINE_SECONDS", "15")
	t.Setenv("OFFLINE_MODE", "true")
	t.Setenv("CACHE_TTL_MINUTES_WEATHER", "30")
	t.Setenv("WEATHER_API_KEY", "secret-key")

	cfg := Load()

	if cfg.CacheMaxSize != 512 {
		t.Errorf("CacheMaxSize = %d, want 512", cfg.CacheMaxSize)
	}
	if cfg.MaxConcurrentUpstream != 4 {
		t.Errorf("MaxConcurrentUpstream = %d, want 4", cfg.MaxConcurrentUpstream)
	}
	if cfg.ForecastDeadline != 15*time.Second {
		t.Errorf("ForecastDeadline = %v, want 15s", cfg.ForecastDeadline)
	}
	if !cfg.OfflineMode {
		t.Error("OfflineMode should be true")
	}
	ttl, ok := cfg.TTLFor("weather")
	if !ok || ttl != 30*time.Minute {
		t.Errorf("TTLFor(weather) = %v,%v, want 30m,true", ttl, ok)
	}
	key, ok := cfg.APIKey("weather")
	if !ok || key != "secret-key" {
		t.Errorf("APIKey(weather) = %q,%v, want secret-key,true", key, ok)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("CACHE_MAX_SIZE", "not-a-number")
	cfg := Load()
	if cfg.CacheMaxSize != DefaultConfig().CacheMaxSize {
		t.Errorf("malformed CACHE_MAX_SIZE should keep default, got %d", cfg.CacheMaxSize)
	}
}
