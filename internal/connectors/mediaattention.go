package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewMediaAttention builds the REGIONAL media-volume connector feeding
// digital_attention.media_attention.
func NewMediaAttention(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/media-attention",
		features: []string{"media_attention"},
		apiKeyFn: apiKeyFn,
		needsGeo: true,
	}
}
