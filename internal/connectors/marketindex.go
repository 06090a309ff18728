package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewMarketIndex builds the GLOBAL market-volatility connector feeding
// economic_stress.market_volatility.
func NewMarketIndex(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/market-volatility",
		features: []string{"market_volatility"},
		apiKeyFn: apiKeyFn,
		needsGeo: false,
	}
}
