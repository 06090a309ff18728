package connectors

import (
	"fmt"

	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/registry"
)

// BaseURLs maps a source id to the upstream host its live REST client
// targets. Offline deployments never dial these; they exist so a
// non-offline configuration has somewhere concrete to point at.
type BaseURLs map[string]string

// DefaultBaseURLs returns placeholder upstream hosts, one per catalog
// entry. Operators override individual entries via configuration
// before going live against real providers.
func DefaultBaseURLs() BaseURLs {
	return BaseURLs{
		"marketindex":       "https://api.marketindex.example",
		"fuelprices":        "https://api.fuelprices.example",
		"consumersentiment": "https://api.consumersentiment.example",
		"weather":           "https://api.weather.example",
		"drought":           "https://api.drought.example",
		"stormevents":       "https://api.stormevents.example",
		"mobility":          "https://api.mobility.example",
		"mediaattention":    "https://api.mediaattention.example",
		"searchinterest":    "https://api.searchinterest.example",
		"healthproxy":       "https://api.healthproxy.example",
	}
}

type builder func(def domain.SourceDefinition, baseURL string, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) domain.Connector

var builders = map[string]builder{
	"marketindex":       NewMarketIndex,
	"fuelprices":        NewFuelPrices,
	"consumersentiment": NewConsumerSentiment,
	"weather":           NewWeather,
	"drought":           NewDrought,
	"stormevents":       NewStormEvents,
	"mobility":          NewMobility,
	"mediaattention":    NewMediaAttention,
	"searchinterest":    NewSearchInterest,
	"healthproxy":       NewHealthProxy,
}

// BuildAll constructs one Connector per entry in src, in registration
// order, wiring each to its base URL, the shared retry config, offline
// mode, and the credential lookup. An entry with no registered builder
// is an invalid_configuration — the catalog and this package must stay
// in lockstep.
func BuildAll(src *registry.SourceRegistry, urls BaseURLs, retry RetryConfig, offline bool, apiKeyFn APIKeyLookup) (map[string]domain.Connector, error) {
	out := make(map[string]domain.Connector, len(src.List()))
	for _, def := range src.List() {
		b, ok := builders[def.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no connector builder registered for source %q", domain.ErrInvalidConfiguration, def.ID)
		}
		out[def.ID] = b(def, urls[def.ID], retry, offline, apiKeyFn)
	}
	return out, nil
}
