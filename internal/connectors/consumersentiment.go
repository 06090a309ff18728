package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewConsumerSentiment builds the NATIONAL consumer-confidence
// connector feeding economic_stress.consumer_sentiment. It runs
// without a key (can_run_without_key = true in the registry entry).
func NewConsumerSentiment(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/consumer-sentiment",
		features: []string{"consumer_sentiment"},
		apiKeyFn: apiKeyFn,
		needsGeo: false,
	}
}
