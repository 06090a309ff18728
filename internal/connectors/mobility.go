package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewMobility builds the REGIONAL mobility connector feeding
// mobility_activity.osm_activity and mobility_activity.transit_activity.
// The definition's MobilitySignalKind is "activity" — these are raw
// activity shares; inversion into a disruption signal happens in the
// index computer, not here.
func NewMobility(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/mobility-activity",
		features: []string{"osm_activity", "transit_activity"},
		apiKeyFn: apiKeyFn,
		needsGeo: true,
	}
}
