// Package harmonize implements the alignment and normalization stage
// described in spec §4.4: given a set of named SourceFetches and a
// target date range, produce one aligned, normalized DailySeries per
// source. The harmonizer never fails a request — every failure mode
// becomes a per-source status flag for the index computer to act on.
package harmonize

import (
	"math"
	"sort"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// minOverlapFraction is the spec §4.4 threshold below which a source
// is excluded as insufficient_overlap.
const minOverlapFraction = 0.30

// interiorInterpolationMaxGap caps how many consecutive interior
// missing days are filled by linear interpolation.
const interiorInterpolationMaxGap = 7

// FillBudgets maps source id to its forward-fill budget in days.
// Market-like sources (closed on weekends/holidays) get a small
// budget; everything else defaults to zero.
type FillBudgets map[string]int

// DefaultFillBudgets matches spec §4.4's "2 days for market-like
// sources, 0 otherwise": marketindex and fuelprices are the catalog's
// two market-style feeds (spec §8's default catalog, see
// internal/registry.DefaultSourceDefinitions).
func DefaultFillBudgets() FillBudgets {
	return FillBudgets{
		"marketindex": 2,
		"fuelprices":  2,
	}
}

// Window is the target alignment range, trimmed to the configured
// maximum history window before harmonization begins.
type Window struct {
	Start domain.Day
	End   domain.Day
}

// NormalizationParams records how a feature column was scaled, so the
// result is reproducible and inspectable (spec §4.4: "the chosen
// method and parameters are recorded alongside the output").
type NormalizationParams struct {
	Method string  // "fixed_range" or "robust_iqr"
	Min    float64 // for fixed_range: the declared min; for robust_iqr: q1
	Max    float64 // for fixed_range: the declared max; for robust_iqr: q3
}

// HarmonizedSource is one source's alignment result.
type HarmonizedSource struct {
	SourceID      string
	Series        domain.DailySeries
	Excluded      bool
	ExcludeReason domain.ErrorKind
	Normalization map[string]NormalizationParams
}

// Harmonizer aligns and normalizes SourceFetches to a common window.
type Harmonizer struct {
	maxHistoryDays int
	fillBudgets    FillBudgets
}

// New builds a Harmonizer. maxHistoryDays bounds how far back the
// target window is trimmed regardless of what callers request.
func New(maxHistoryDays int, fillBudgets FillBudgets) *Harmonizer {
	return &Harmonizer{maxHistoryDays: maxHistoryDays, fillBudgets: fillBudgets}
}

// Trim clamps window to at most h.maxHistoryDays, anchored on End.
func (h *Harmonizer) Trim(window Window) Window {
	span := domain.DaysBetween(window.Start, window.End) + 1
	if h.maxHistoryDays > 0 && span > h.maxHistoryDays {
		window.Start = window.End.AddDays(-(h.maxHistoryDays - 1))
	}
	return window
}

// Harmonize aligns every fetch to window, in the order given.
// fetches with status other than ok pass through as excluded entries
// carrying their own error_kind rather than being silently dropped,
// so callers can still report why a source contributed nothing.
func (h *Harmonizer) Harmonize(fetches []domain.SourceFetch, window Window) []HarmonizedSource {
	window = h.Trim(window)
	out := make([]HarmonizedSource, 0, len(fetches))
	for _, fetch := range fetches {
		if fetch.Status != domain.FetchStatusOK || fetch.Series == nil {
			out = append(out, HarmonizedSource{
				SourceID:      fetch.SourceID,
				Excluded:      true,
				ExcludeReason: excludeReasonFor(fetch),
			})
			continue
		}
		out = append(out, h.harmonizeOne(fetch, window))
	}
	return out
}

func excludeReasonFor(fetch domain.SourceFetch) domain.ErrorKind {
	if fetch.ErrorKind != "" {
		return fetch.ErrorKind
	}
	return domain.ErrorKindUpstreamUnavailable
}

func (h *Harmonizer) harmonizeOne(fetch domain.SourceFetch, window Window) HarmonizedSource {
	aligned := realign(*fetch.Series, window)
	budget := h.fillBudgets[fetch.SourceID]

	present := 0
	total := aligned.Len() * len(aligned.Features)
	for _, feature := range aligned.Features {
		forwardFill(aligned, feature, budget)
		linearInterpolate(aligned, feature, interiorInterpolationMaxGap)
	}
	for _, feature := range aligned.Features {
		for i := 0; i < aligned.Len(); i++ {
			if _, ok := aligned.Get(feature, i); ok {
				present++
			}
		}
	}

	overlap := 0.0
	if total > 0 {
		overlap = float64(present) / float64(total)
	}
	if overlap < minOverlapFraction {
		return HarmonizedSource{
			SourceID:      fetch.SourceID,
			Excluded:      true,
			ExcludeReason: domain.ErrorKindInsufficientOverlap,
		}
	}

	norm := make(map[string]NormalizationParams, len(aligned.Features))
	for _, feature := range aligned.Features {
		norm[feature] = normalizeFeature(aligned, feature)
	}

	return HarmonizedSource{
		SourceID:      fetch.SourceID,
		Series:        aligned,
		Normalization: norm,
	}
}

// realign copies series onto a fresh dense grid spanning window,
// leaving days window contains but series doesn't as missing.
func realign(series domain.DailySeries, window Window) domain.DailySeries {
	out := domain.NewDailySeries(window.Start, window.End, series.Features)
	for _, feature := range series.Features {
		for i := 0; i < series.Len(); i++ {
			v, ok := series.Get(feature, i)
			if !ok {
				continue
			}
			day := series.DayAt(i)
			idx := out.IndexOf(day)
			if idx >= 0 {
				out.Set(feature, idx, v)
			}
		}
	}
	return out
}

// forwardFill propagates the last known value forward across gaps of
// at most budget days. budget == 0 disables forward-fill entirely.
func forwardFill(series domain.DailySeries, feature string, budget int) {
	if budget <= 0 {
		return
	}
	var lastVal float64
	haveLast := false
	gap := 0
	for i := 0; i < series.Len(); i++ {
		v, ok := series.Get(feature, i)
		if ok {
			lastVal, haveLast, gap = v, true, 0
			continue
		}
		if haveLast && gap < budget {
			series.Set(feature, i, lastVal)
			gap++
		} else {
			gap++
		}
	}
}

// linearInterpolate fills interior gaps (bounded on both sides by a
// present value) of at most maxGap days using straight-line
// interpolation between the two bounding points.
func linearInterpolate(series domain.DailySeries, feature string, maxGap int) {
	n := series.Len()
	i := 0
	for i < n {
		if _, ok := series.Get(feature, i); ok {
			i++
			continue
		}
		start := i
		for i < n {
			if _, ok := series.Get(feature, i); ok {
				break
			}
			i++
		}
		gapLen := i - start
		if start == 0 || i >= n || gapLen > maxGap {
			continue
		}
		left, _ := series.Get(feature, start-1)
		right, _ := series.Get(feature, i)
		for j := 0; j < gapLen; j++ {
			frac := float64(j+1) / float64(gapLen+1)
			series.Set(feature, start+j, left+frac*(right-left))
		}
	}
}

// normalizeFeature robustly scales a feature column into [0,1] using
// the interquartile range of the observed window, clipped at the
// edges (spec §4.4 method (b)). No source in the default catalog
// declares a fixed min/max, so method (a) is unused in practice; see
// DESIGN.md.
func normalizeFeature(series domain.DailySeries, feature string) NormalizationParams {
	col := series.Values[feature]
	var observed []float64
	for _, v := range col {
		if domain.IsFinite(v) {
			observed = append(observed, v)
		}
	}
	if len(observed) == 0 {
		return NormalizationParams{Method: "robust_iqr", Min: 0, Max: 1}
	}

	sorted := append([]float64(nil), observed...)
	sort.Float64s(sorted)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	if q3 <= q1 {
		// Degenerate (near-constant) column: fall back to min/max span
		// so division by zero can't occur.
		q1, q3 = sorted[0], sorted[len(sorted)-1]
		if q3 <= q1 {
			q3 = q1 + 1
		}
	}

	for i, v := range col {
		if !domain.IsFinite(v) {
			continue
		}
		scaled := (v - q1) / (q3 - q1)
		series.Set(feature, i, domain.Clamp01(scaled))
	}
	return NormalizationParams{Method: "robust_iqr", Min: q1, Max: q3}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := p * float64(len(sorted)-1)
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
