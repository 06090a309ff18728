package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewSearchInterest builds the REGIONAL search-trend connector feeding
// digital_attention.search_interest. Runs without a key.
func NewSearchInterest(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/search-interest",
		features: []string{"search_interest"},
		apiKeyFn: apiKeyFn,
		needsGeo: true,
	}
}
