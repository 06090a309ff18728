package harmonize

import (
	"math"
	"testing"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

func dayN(n int) domain.Day {
	base := domain.NewDay(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	return base.AddDays(n)
}

func TestHarmonizeExcludesNonOKFetches(t *testing.T) {
	h := New(90, DefaultFillBudgets())
	fetches := []domain.SourceFetch{
		{SourceID: "healthproxy", Status: domain.FetchStatusEmpty, ErrorKind: domain.ErrorKindMissingCredentials},
	}
	results := h.Harmonize(fetches, Window{Start: dayN(0), End: dayN(29)})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Excluded || results[0].ExcludeReason != domain.ErrorKindMissingCredentials {
		t.Fatalf("unexpected result: %+v", results[0])
	}
}

func TestHarmonizeExcludesInsufficientOverlap(t *testing.T) {
	series := domain.NewDailySeries(dayN(0), dayN(2), []string{"x"})
	series.Set("x", 0, 0.5)
	fetch := domain.SourceFetch{SourceID: "s", Status: domain.FetchStatusOK, Series: &series}

	h := New(90, nil)
	results := h.Harmonize([]domain.SourceFetch{fetch}, Window{Start: dayN(0), End: dayN(29)})
	if !results[0].Excluded || results[0].ExcludeReason != domain.ErrorKindInsufficientOverlap {
		t.Fatalf("expected insufficient_overlap, got %+v", results[0])
	}
}

func TestForwardFillRespectsBudget(t *testing.T) {
	series := domain.NewDailySeries(dayN(0), dayN(9), []string{"x"})
	series.Set("x", 0, 1.0)
	forwardFill(series, "x", 2)

	for i := 1; i <= 2; i++ {
		if v, ok := series.Get("x", i); !ok || v != 1.0 {
			t.Errorf("index %d should be forward-filled to 1.0, got %v,%v", i, v, ok)
		}
	}
	if _, ok := series.Get("x", 3); ok {
		t.Error("index 3 is beyond the fill budget and should remain missing")
	}
}

func TestLinearInterpolateFillsInteriorGap(t *testing.T) {
	series := domain.NewDailySeries(dayN(0), dayN(4), []string{"x"})
	series.Set("x", 0, 0.0)
	series.Set("x", 4, 4.0)
	linearInterpolate(series, "x", 7)

	for i, want := range []float64{0, 1, 2, 3, 4} {
		v, ok := series.Get("x", i)
		if !ok || math.Abs(v-want) > 1e-9 {
			t.Errorf("index %d = %v,%v, want %v", i, v, ok, want)
		}
	}
}

func TestLinearInterpolateLeavesLongGapsMissing(t *testing.T) {
	series := domain.NewDailySeries(dayN(0), dayN(10), []string{"x"})
	series.Set("x", 0, 0.0)
	series.Set("x", 10, 10.0)
	linearInterpolate(series, "x", 7)

	if _, ok := series.Get("x", 5); ok {
		t.Error("gap longer than maxGap should remain missing")
	}
}

func TestNormalizeFeatureProducesUnitRange(t *testing.T) {
	series := domain.NewDailySeries(dayN(0), dayN(9), []string{"x"})
	for i := 0; i < 10; i++ {
		series.Set("x", i, float64(i))
	}
	params := normalizeFeature(series, "x")
	if params.Method != "robust_iqr" {
		t.Fatalf("Method = %q, want robust_iqr", params.Method)
	}
	for i := 0; i < 10; i++ {
		v, _ := series.Get("x", i)
		if v < 0 || v > 1 {
			t.Errorf("normalized value out of [0,1] at %d: %v", i, v)
		}
	}
}

func TestHarmonizeSuccessRecordsNormalization(t *testing.T) {
	series := domain.NewDailySeries(dayN(0), dayN(29), []string{"x"})
	for i := 0; i < 30; i++ {
		series.Set("x", i, float64(i)*0.1)
	}
	fetch := domain.SourceFetch{SourceID: "weather", Status: domain.FetchStatusOK, Series: &series}

	h := New(90, nil)
	results := h.Harmonize([]domain.SourceFetch{fetch}, Window{Start: dayN(0), End: dayN(29)})
	if results[0].Excluded {
		t.Fatalf("should not be excluded: %+v", results[0])
	}
	if _, ok := results[0].Normalization["x"]; !ok {
		t.Fatal("expected normalization params recorded for feature x")
	}
}
