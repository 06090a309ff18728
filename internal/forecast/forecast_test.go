package forecast

import (
	"math"
	"testing"
)

func TestForecastNaiveLastForShortHistory(t *testing.T) {
	history := []float64{0.4, 0.45, 0.5}
	r := Forecast(history, 7, 0)
	if r.ModelName != "naive_last" {
		t.Fatalf("ModelName = %q, want naive_last", r.ModelName)
	}
	if len(r.Point) != 7 {
		t.Fatalf("len(Point) = %d, want 7", len(r.Point))
	}
	for i, p := range r.Point {
		if p != 0.5 {
			t.Errorf("Point[%d] = %v, want last value 0.5", i, p)
		}
	}
}

func TestForecastSingleObservationIsNaive(t *testing.T) {
	r := Forecast([]float64{0.3}, 3, 0)
	if r.ModelName != "naive_last" {
		t.Fatalf("ModelName = %q, want naive_last for <2 observations", r.ModelName)
	}
}

func TestForecastTrendSmoothingFor10To29Days(t *testing.T) {
	history := make([]float64, 15)
	for i := range history {
		history[i] = 0.3 + float64(i)*0.01
	}
	r := Forecast(history, 7, 0)
	if r.ModelName != "exp_smoothing_trend" {
		t.Fatalf("ModelName = %q, want exp_smoothing_trend", r.ModelName)
	}
	if len(r.Point) != 7 || len(r.Lower) != 7 || len(r.Upper) != 7 {
		t.Fatal("forecast arrays should match horizon length")
	}
}

func TestForecastSeasonalSmoothingFor30PlusDays(t *testing.T) {
	history := make([]float64, 60)
	for i := range history {
		wave := 0.05 * math.Sin(2*math.Pi*float64(i%7)/7)
		history[i] = 0.4 + wave + float64(i)*0.001
	}
	r := Forecast(history, 7, 0)
	if r.ModelName != "exp_smoothing_seasonal" {
		t.Fatalf("ModelName = %q, want exp_smoothing_seasonal", r.ModelName)
	}
}

func TestForecastClipsToUnitRangeAndIntervalOrdering(t *testing.T) {
	history := make([]float64, 60)
	for i := range history {
		history[i] = 0.98 + 0.01*math.Sin(float64(i))
	}
	r := Forecast(history, 14, 0)
	for i := range r.Point {
		if r.Point[i] < 0 || r.Point[i] > 1 {
			t.Fatalf("Point[%d] = %v out of [0,1]", i, r.Point[i])
		}
		if r.Lower[i] < 0 || r.Lower[i] > r.Point[i] {
			t.Fatalf("Lower[%d] = %v not in [0,Point]", i, r.Lower[i])
		}
		if r.Upper[i] > 1 || r.Upper[i] < r.Point[i] {
			t.Fatalf("Upper[%d] = %v not in [Point,1]", i, r.Upper[i])
		}
	}
}

func TestSeedDeterministic(t *testing.T) {
	a := Seed("us_il", 7)
	b := Seed("us_il", 7)
	if a != b {
		t.Fatalf("Seed not deterministic: %v != %v", a, b)
	}
	c := Seed("us_az", 7)
	if a == c {
		t.Fatal("Seed should differ across regions")
	}
}

func TestForecastRunTwiceIsIdentical(t *testing.T) {
	history := make([]float64, 45)
	for i := range history {
		history[i] = 0.3 + 0.02*math.Sin(float64(i))
	}
	seed := Seed("us_il", 7)
	r1 := Forecast(history, 7, seed)
	r2 := Forecast(history, 7, seed)
	for i := range r1.Point {
		if r1.Point[i] != r2.Point[i] {
			t.Fatalf("repeated run diverged at index %d: %v != %v", i, r1.Point[i], r2.Point[i])
		}
	}
}
