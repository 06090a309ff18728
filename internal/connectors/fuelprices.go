package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewFuelPrices builds the NATIONAL fuel-price connector feeding
// economic_stress.fuel_stress. Classification is NATIONAL, so needsGeo
// is false: the fingerprint covers only the source id and the window.
// Neither lat/lon nor the registry's "country" key field enters it, and
// the upstream call through the shared REST path carries no geo inputs.
func NewFuelPrices(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/fuel-prices",
		features: []string{"fuel_stress"},
		apiKeyFn: apiKeyFn,
		needsGeo: false,
	}
}
