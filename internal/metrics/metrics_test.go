package metrics

import (
	"testing"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/domain"
	dto "github.com/prometheus/client_model/go"
)

// testGaugeValue extracts the current numeric value of a single
// labeled observer (Gauge or Counter), avoiding a dependency on
// testutil's text-format comparison for single-value assertions.
func testGaugeValue(t *testing.T, obs interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	if err := obs.Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue()
	case m.Counter != nil:
		return m.Counter.GetValue()
	default:
		t.Fatal("metric has neither Gauge nor Counter value")
		return 0
	}
}

func sampleResult(region string, createdAt time.Time, composite float64, degraded bool) (domain.ForecastResult, *domain.SubIndexNode) {
	root := &domain.SubIndexNode{Name: "composite", Kind: domain.NodeKindComposite, Value: composite}
	econ := &domain.SubIndexNode{Name: "economic_stress", Kind: domain.NodeKindParent, Value: 0.4, Weight: 1}
	econ.Children = []*domain.SubIndexNode{
		{Name: "market_volatility", Kind: domain.NodeKindChild, Value: 0.4, Weight: 1},
	}
	root.Children = []*domain.SubIndexNode{econ}

	result := domain.ForecastResult{
		RegionID:    region,
		CreatedAt:   createdAt,
		HorizonDays: 7,
		ModelName:   "naive_last",
		Forecast:    make([]domain.ForecastPoint, 7),
		Sources: []domain.SourceFetchSummary{
			{SourceID: "marketindex", Status: domain.FetchStatusOK, LastFetched: createdAt},
			{SourceID: "fuelprices", Status: domain.FetchStatusError},
		},
		Degraded: degraded,
		History: domain.HistorySeries{
			Composite: []float64{0.5, 0.52, 0.51, 0.49, 0.48, 0.5, 0.53, composite},
		},
	}
	return result, root
}

func TestPublishSetsBehaviorIndexAndDegraded(t *testing.T) {
	p := NewPublisher()
	region := "test_region_publish_basic"
	result, root := sampleResult(region, time.Unix(1000, 0), 0.6, false)
	p.Publish(result, root)

	if v := testGaugeValue(t, BehaviorIndex.WithLabelValues(region)); v != 0.6 {
		t.Fatalf("BehaviorIndex = %v, want 0.6", v)
	}
	if v := testGaugeValue(t, Degraded.WithLabelValues(region)); v != 0 {
		t.Fatalf("Degraded = %v, want 0", v)
	}
	if v := testGaugeValue(t, ParentSubindexValue.WithLabelValues(region, "economic_stress")); v != 0.4 {
		t.Fatalf("ParentSubindexValue = %v, want 0.4", v)
	}
	if v := testGaugeValue(t, ChildSubindexValue.WithLabelValues(region, "economic_stress", "market_volatility")); v != 0.4 {
		t.Fatalf("ChildSubindexValue = %v, want 0.4", v)
	}
	if v := testGaugeValue(t, DataSourceStatus.WithLabelValues(region, "marketindex")); v != 1 {
		t.Fatalf("DataSourceStatus(marketindex) = %v, want 1", v)
	}
	if v := testGaugeValue(t, DataSourceStatus.WithLabelValues(region, "fuelprices")); v != 0 {
		t.Fatalf("DataSourceStatus(fuelprices) = %v, want 0", v)
	}
}

func TestPublishDegradedSetsGaugeToOne(t *testing.T) {
	p := NewPublisher()
	region := "test_region_publish_degraded"
	result, root := sampleResult(region, time.Unix(2000, 0), 0.5, true)
	p.Publish(result, root)

	if v := testGaugeValue(t, Degraded.WithLabelValues(region)); v != 1 {
		t.Fatalf("Degraded = %v, want 1", v)
	}
}

func TestPublishIgnoresStaleResult(t *testing.T) {
	p := NewPublisher()
	region := "test_region_publish_stale"

	newer, newerRoot := sampleResult(region, time.Unix(5000, 0), 0.7, false)
	p.Publish(newer, newerRoot)

	older, olderRoot := sampleResult(region, time.Unix(4000, 0), 0.1, false)
	p.Publish(older, olderRoot)

	if v := testGaugeValue(t, BehaviorIndex.WithLabelValues(region)); v != 0.7 {
		t.Fatalf("BehaviorIndex = %v, want 0.7 (stale publish must not overwrite)", v)
	}
}

func TestPublishAcceptsStrictlyNewerResult(t *testing.T) {
	p := NewPublisher()
	region := "test_region_publish_newer"

	first, firstRoot := sampleResult(region, time.Unix(1000, 0), 0.3, false)
	p.Publish(first, firstRoot)

	second, secondRoot := sampleResult(region, time.Unix(2000, 0), 0.9, false)
	p.Publish(second, secondRoot)

	if v := testGaugeValue(t, BehaviorIndex.WithLabelValues(region)); v != 0.9 {
		t.Fatalf("BehaviorIndex = %v, want 0.9", v)
	}
}

func TestDeltasAndVolatilityOnShortSeries(t *testing.T) {
	d7, d30, d90, vol := deltasAndVolatility([]float64{0.5})
	if d7 != 0 || d30 != 0 || d90 != 0 {
		t.Fatalf("deltas on single-point series should be 0, got %v %v %v", d7, d30, d90)
	}
	if vol != 0 {
		t.Fatalf("volatility on single-point series should be 0, got %v", vol)
	}
}

func TestDeltasAndVolatilityComputesRateOfChange(t *testing.T) {
	series := make([]float64, 10)
	for i := range series {
		series[i] = 0.1 * float64(i)
	}
	d7, _, _, _ := deltasAndVolatility(series)
	want := series[9] - series[2]
	if d7 != want {
		t.Fatalf("delta7 = %v, want %v", d7, want)
	}
}

func TestRollingStdZeroForConstantSeries(t *testing.T) {
	series := make([]float64, 40)
	for i := range series {
		series[i] = 0.42
	}
	if v := rollingStd(series, 30); v != 0 {
		t.Fatalf("rollingStd of constant series = %v, want 0", v)
	}
}
