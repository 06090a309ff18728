package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewStormEvents builds the REGIONAL severe-storm connector feeding
// environmental_stress.storm_severity_stress and
// environmental_stress.flood_risk_stress.
func NewStormEvents(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/storm-events",
		features: []string{"storm_severity_stress", "flood_risk_stress"},
		apiKeyFn: apiKeyFn,
		needsGeo: true,
	}
}
