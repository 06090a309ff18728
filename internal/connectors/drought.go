package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewDrought builds the REGIONAL drought-monitor connector feeding
// environmental_stress.drought_stress.
func NewDrought(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/drought-monitor",
		features: []string{"drought_stress"},
		apiKeyFn: apiKeyFn,
		needsGeo: true,
	}
}
