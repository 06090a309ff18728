// Package index implements the Behavior Index Computer (spec §4.5):
// a fixed two-level tree of five parents over harmonized source
// features, each parent the renormalized weighted mean of its present
// children, the composite the renormalized weighted mean of its
// present parents.
package index

import (
	"fmt"
	"math"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// ChildSpec names one leaf of the tree: which harmonized source and
// feature column it reads from.
type ChildSpec struct {
	Name     string
	SourceID string
	Feature  string
}

// ParentSpec is one of the five fixed parents.
type ParentSpec struct {
	Name     string
	Children []ChildSpec
	// Invert reports whether the parent's aggregated value should be
	// inverted (1 - value) before it contributes to the composite —
	// true only for mobility_activity (spec §4.5: "low activity =
	// disruption").
	Invert bool
}

// Parents is the fixed structure of spec §4.5's table. Children within
// a parent start at equal weight; renormalization happens over
// whichever children are present on a given day.
func Parents() []ParentSpec {
	return []ParentSpec{
		{
			Name: "economic_stress",
			Children: []ChildSpec{
				{Name: "market_volatility", SourceID: "marketindex", Feature: "market_volatility"},
				{Name: "fuel_stress", SourceID: "fuelprices", Feature: "fuel_stress"},
				{Name: "consumer_sentiment", SourceID: "consumersentiment", Feature: "consumer_sentiment"},
			},
		},
		{
			Name: "environmental_stress",
			Children: []ChildSpec{
				{Name: "weather_discomfort", SourceID: "weather", Feature: "weather_discomfort"},
				{Name: "drought_stress", SourceID: "drought", Feature: "drought_stress"},
				{Name: "heatwave_stress", SourceID: "weather", Feature: "heatwave_stress"},
				{Name: "flood_risk_stress", SourceID: "stormevents", Feature: "flood_risk_stress"},
				{Name: "storm_severity_stress", SourceID: "stormevents", Feature: "storm_severity_stress"},
			},
		},
		{
			Name: "mobility_activity",
			Invert: true,
			Children: []ChildSpec{
				{Name: "osm_activity", SourceID: "mobility", Feature: "osm_activity"},
				{Name: "transit_activity", SourceID: "mobility", Feature: "transit_activity"},
			},
		},
		{
			Name: "digital_attention",
			Children: []ChildSpec{
				{Name: "media_attention", SourceID: "mediaattention", Feature: "media_attention"},
				{Name: "search_interest", SourceID: "searchinterest", Feature: "search_interest"},
			},
		},
		{
			Name: "public_health_stress",
			Children: []ChildSpec{
				{Name: "health_risk_proxy", SourceID: "healthproxy", Feature: "health_risk_proxy"},
			},
		},
	}
}

// Weights is the configured (economic, environmental, mobility,
// digital, health) tuple named in spec §4.5.
type Weights struct {
	Economic      float64
	Environmental float64
	Mobility      float64
	Digital       float64
	Health        float64
}

// DefaultWeights returns the spec's default weight table, summing to 1.00.
func DefaultWeights() Weights {
	return Weights{Economic: 0.25, Environmental: 0.25, Mobility: 0.20, Digital: 0.15, Health: 0.15}
}

// Computer evaluates the behavior index tree for a set of harmonized
// source series, one day at a time.
type Computer struct {
	parents []ParentSpec
	weight  map[string]float64
}

// New validates w (each weight >= 0, sum > 0) and renormalizes it to
// sum to 1, per spec §4.5. A non-positive sum is invalid_configuration
// and fails construction rather than being silently tolerated.
func New(w Weights) (*Computer, error) {
	values := map[string]float64{
		"economic_stress":      w.Economic,
		"environmental_stress": w.Environmental,
		"mobility_activity":    w.Mobility,
		"digital_attention":    w.Digital,
		"public_health_stress": w.Health,
	}
	sum := 0.0
	for name, v := range values {
		if v < 0 {
			return nil, fmt.Errorf("%w: weight for %s is negative (%v)", domain.ErrInvalidWeights, name, v)
		}
		sum += v
	}
	if sum <= 0 {
		return nil, domain.ErrInvalidWeights
	}
	for name := range values {
		values[name] /= sum
	}
	return &Computer{parents: Parents(), weight: values}, nil
}

// SourceSeries is the minimal read surface the computer needs from a
// harmonized source: the feature values for one day.
type SourceSeries interface {
	Get(feature string, day int) (float64, bool)
}

// Compute evaluates the tree for day index dayIdx against bySource
// (harmonized, normalized series keyed by source id). It never
// returns an error: an all-missing composite degrades to 0.5 per
// spec §4.5 rather than failing.
func (c *Computer) Compute(dayIdx int, bySource map[string]SourceSeries) (*domain.SubIndexNode, bool) {
	parentNodes := make([]*domain.SubIndexNode, 0, len(c.parents))
	for _, spec := range c.parents {
		parentNodes = append(parentNodes, c.computeParent(spec, dayIdx, bySource))
	}

	presentWeight := 0.0
	weightedSum := 0.0
	anyPresent := false
	for _, p := range parentNodes {
		if p.Missing {
			continue
		}
		anyPresent = true
		w := c.weight[p.Name]
		weightedSum += w * p.Value
		presentWeight += w
	}

	composite := &domain.SubIndexNode{Name: "composite", Kind: domain.NodeKindComposite, Children: parentNodes}
	degraded := false
	if !anyPresent || presentWeight <= 0 {
		composite.Value = 0.5
		composite.Missing = false
		degraded = true
	} else {
		composite.Value = domain.Clamp01(weightedSum / presentWeight)
	}
	for _, p := range parentNodes {
		if !p.Missing {
			p.Weight = c.weight[p.Name] / presentWeight
		}
	}
	return composite, degraded
}

func (c *Computer) computeParent(spec ParentSpec, dayIdx int, bySource map[string]SourceSeries) *domain.SubIndexNode {
	childNodes := make([]*domain.SubIndexNode, 0, len(spec.Children))
	presentSum := 0.0
	presentCount := 0
	for _, cs := range spec.Children {
		series, ok := bySource[cs.SourceID]
		if !ok {
			childNodes = append(childNodes, domain.NewMissingNode(cs.Name, domain.NodeKindChild))
			continue
		}
		v, ok := series.Get(cs.Feature, dayIdx)
		if !ok || !domain.IsFinite(v) {
			childNodes = append(childNodes, domain.NewMissingNode(cs.Name, domain.NodeKindChild))
			continue
		}
		v = domain.Clamp01(v)
		childNodes = append(childNodes, &domain.SubIndexNode{
			Name:                cs.Name,
			Kind:                domain.NodeKindChild,
			Value:               v,
			ContributingSources: []string{cs.SourceID},
		})
		presentSum += v
		presentCount++
	}

	for _, child := range childNodes {
		if !child.Missing {
			child.Weight = 1.0 / float64(presentCount)
		}
	}

	if presentCount == 0 {
		node := domain.NewMissingNode(spec.Name, domain.NodeKindParent)
		node.Children = childNodes
		return node
	}

	mean := presentSum / float64(presentCount)
	if spec.Invert {
		mean = 1 - mean
	}
	return &domain.SubIndexNode{
		Name:     spec.Name,
		Kind:     domain.NodeKindParent,
		Value:    domain.Clamp01(mean),
		Children: childNodes,
	}
}

// ComputeHistory evaluates every day in [0,days) and returns the
// composite/parent/child value series, suitable for
// domain.ForecastResult.History.
func (c *Computer) ComputeHistory(days int, bySource map[string]SourceSeries) (composite []float64, parents map[string][]float64, children map[string][]float64, anyDegraded bool) {
	composite = make([]float64, days)
	parents = make(map[string][]float64)
	children = make(map[string][]float64)
	for _, p := range c.parents {
		parents[p.Name] = make([]float64, days)
		for _, cs := range p.Children {
			children[cs.Name] = make([]float64, days)
		}
	}

	for d := 0; d < days; d++ {
		node, degraded := c.Compute(d, bySource)
		if degraded {
			anyDegraded = true
		}
		composite[d] = node.Value
		for _, p := range node.Children {
			if p.Missing {
				parents[p.Name][d] = math.NaN()
			} else {
				parents[p.Name][d] = p.Value
			}
			for _, child := range p.Children {
				if child.Missing {
					children[child.Name][d] = math.NaN()
				} else {
					children[child.Name][d] = child.Value
				}
			}
		}
	}
	return composite, parents, children, anyDegraded
}
