package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewWeather builds the REGIONAL daily weather-discomfort connector,
// feeding environmental_stress.weather_discomfort and
// environmental_stress.heatwave_stress from a single upstream call.
func NewWeather(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/weather-discomfort",
		features: []string{"weather_discomfort", "heatwave_stress"},
		apiKeyFn: apiKeyFn,
		needsGeo: true,
	}
}
