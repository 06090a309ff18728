package registry

import "github.com/fieldpulse/fieldpulse/internal/domain"

// DefaultSourceDefinitions returns the built-in catalog of upstream
// providers described in spec.md §2 item 1 and used to build the
// behavior index of §4.5. Connectors are registered under these same
// ids by internal/connectors.BuildAll (default.go), wired 1:1.
func DefaultSourceDefinitions() []domain.SourceDefinition {
	return []domain.SourceDefinition{
		{
			ID:             "marketindex",
			Name:           "Global Market Volatility Index",
			Category:       "economic",
			Classification: domain.ClassificationGlobal,
			RequiresKey:    true,
			GeoInputsUsed:  nil,
			CacheKeyFields: nil,
			Description:    "Daily equity volatility index feeding economic_stress.market_volatility.",
		},
		{
			ID:             "fuelprices",
			Name:           "National Fuel Price Index",
			Category:       "economic",
			Classification: domain.ClassificationNational,
			RequiresKey:    true,
			GeoInputsUsed:  []string{"country"},
			CacheKeyFields: []string{"country"},
			Description:    "National retail fuel price series feeding economic_stress.fuel_stress.",
		},
		{
			ID:                "consumersentiment",
			Name:              "National Consumer Sentiment Index",
			Category:          "economic",
			Classification:    domain.ClassificationNational,
			RequiresKey:       false,
			CanRunWithoutKey:  true,
			GeoInputsUsed:     []string{"country"},
			CacheKeyFields:    []string{"country"},
			Description:       "Consumer confidence survey feeding economic_stress.consumer_sentiment.",
		},
		{
			ID:               "weather",
			Name:             "Daily Weather Discomfort",
			Category:         "environmental",
			Classification:   domain.ClassificationRegional,
			RequiresKey:      false,
			CanRunWithoutKey: true,
			GeoInputsUsed:    []string{"lat", "lon"},
			CacheKeyFields:   []string{"lat", "lon"},
			Description:      "Temperature/humidity discomfort and heatwave stress feeding environmental_stress.",
		},
		{
			ID:               "drought",
			Name:             "Regional Drought Monitor",
			Category:         "environmental",
			Classification:   domain.ClassificationRegional,
			RequiresKey:      false,
			CanRunWithoutKey: true,
			GeoInputsUsed:    []string{"lat", "lon"},
			CacheKeyFields:   []string{"lat", "lon"},
			Description:      "Drought severity index feeding environmental_stress.drought_stress.",
		},
		{
			ID:             "stormevents",
			Name:           "Severe Storm Event Feed",
			Category:       "environmental",
			Classification: domain.ClassificationRegional,
			RequiresKey:    false,
			CanRunWithoutKey: true,
			GeoInputsUsed:  []string{"lat", "lon"},
			CacheKeyFields: []string{"lat", "lon"},
			Description:    "Storm severity and flood-risk proxies feeding environmental_stress.",
		},
		{
			ID:                 "mobility",
			Name:               "Regional Mobility Activity",
			Category:           "mobility",
			Classification:     domain.ClassificationRegional,
			RequiresKey:        false,
			CanRunWithoutKey:   true,
			GeoInputsUsed:      []string{"lat", "lon"},
			CacheKeyFields:     []string{"lat", "lon"},
			Description:        "OSM/transit activity shares feeding the (inverted) mobility_activity parent.",
			MobilitySignalKind: "activity",
		},
		{
			ID:             "mediaattention",
			Name:           "Regional Media Attention",
			Category:       "digital",
			Classification: domain.ClassificationRegional,
			RequiresKey:    true,
			GeoInputsUsed:  []string{"lat", "lon"},
			CacheKeyFields: []string{"lat", "lon"},
			Description:    "News/media volume about the region feeding digital_attention.media_attention.",
		},
		{
			ID:               "searchinterest",
			Name:             "Regional Search Interest",
			Category:         "digital",
			Classification:   domain.ClassificationRegional,
			RequiresKey:      false,
			CanRunWithoutKey: true,
			GeoInputsUsed:    []string{"lat", "lon"},
			CacheKeyFields:   []string{"lat", "lon"},
			Description:      "Public search-trend volume feeding digital_attention.search_interest.",
		},
		{
			ID:             "healthproxy",
			Name:           "Public Health Risk Proxy",
			Category:       "public_health",
			Classification: domain.ClassificationRegional,
			RequiresKey:    true,
			GeoInputsUsed:  []string{"lat", "lon"},
			CacheKeyFields: []string{"lat", "lon"},
			Description:    "Syndromic surveillance proxy feeding public_health_stress.health_risk_proxy.",
		},
	}
}
