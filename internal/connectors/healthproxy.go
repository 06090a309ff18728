package connectors

import "github.com/fieldpulse/fieldpulse/internal/domain"

// NewHealthProxy builds the REGIONAL syndromic-surveillance connector
// feeding public_health_stress.health_risk_proxy.
func NewHealthProxy(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector {
	return &generic{
		def:      def,
		retry:    retry,
		offline:  offline,
		rest:     newRESTClient(baseURL),
		path:     "/v1/health-risk-proxy",
		features: []string{"health_risk_proxy"},
		apiKeyFn: apiKeyFn,
		needsGeo: true,
	}
}
