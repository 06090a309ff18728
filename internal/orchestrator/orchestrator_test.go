package orchestrator

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/cache"
	"github.com/fieldpulse/fieldpulse/internal/connectors"
	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/harmonize"
	"github.com/fieldpulse/fieldpulse/internal/index"
	"github.com/fieldpulse/fieldpulse/internal/journal"
	"github.com/fieldpulse/fieldpulse/internal/metrics"
	"github.com/fieldpulse/fieldpulse/internal/registry"
)

func allKeys(id string) (string, bool) { return "test-key-" + id, true }

func testOrchestrator(t *testing.T, maxConcurrentRequests int, deadline time.Duration) (*Orchestrator, domain.Region) {
	t.Helper()

	sources, err := registry.NewSourceRegistry(registry.DefaultSourceDefinitions())
	if err != nil {
		t.Fatalf("NewSourceRegistry: %v", err)
	}
	conns, err := connectors.BuildAll(sources, connectors.DefaultBaseURLs(), connectors.DefaultRetryConfig(), true, allKeys)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	c := cache.New(1024, fixedTTL{}, nil)
	harmonizer := harmonize.New(3650, harmonize.DefaultFillBudgets())
	idx, err := index.New(index.DefaultWeights())
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	publisher := metrics.NewPublisher()

	o := New(sources, conns, c, harmonizer, idx, publisher, nil, 8, maxConcurrentRequests, deadline)
	region := domain.Region{ID: "us_il", Name: "Illinois", Country: "US", RegionType: domain.RegionTypeState, Lat: 40.0, Lon: -89.0}
	return o, region
}

type fixedTTL struct{}

func (fixedTTL) TTLFor(string) (time.Duration, bool) { return 15 * time.Minute, true }

func TestRunProducesValidForecastOffline(t *testing.T) {
	o, region := testOrchestrator(t, 8, 10*time.Second)
	result, err := o.Run(context.Background(), region, Request{DaysBack: 60, ForecastHorizon: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RegionID != "us_il" {
		t.Errorf("RegionID = %q, want us_il", result.RegionID)
	}
	if len(result.Forecast) != 7 {
		t.Fatalf("len(Forecast) = %d, want 7", len(result.Forecast))
	}
	for i, p := range result.Forecast {
		if p.Point < 0 || p.Point > 1 {
			t.Errorf("Forecast[%d].Point = %v out of [0,1]", i, p.Point)
		}
		if p.Lower > p.Point || p.Point > p.Upper {
			t.Errorf("Forecast[%d] ordering violated: lower=%v point=%v upper=%v", i, p.Lower, p.Point, p.Upper)
		}
	}
	if len(result.Sources) != len(registry.DefaultSourceDefinitions()) {
		t.Errorf("len(Sources) = %d, want %d", len(result.Sources), len(registry.DefaultSourceDefinitions()))
	}
	if result.DataQuality.RegionalVarianceTag != "regional" {
		t.Errorf("RegionalVarianceTag = %q, want regional (offline regional sources always succeed)", result.DataQuality.RegionalVarianceTag)
	}
}

func TestRunTwiceWithinTTLYieldsIdenticalComposite(t *testing.T) {
	o, region := testOrchestrator(t, 8, 10*time.Second)
	r1, err := o.Run(context.Background(), region, Request{DaysBack: 45, ForecastHorizon: 5})
	if err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	r2, err := o.Run(context.Background(), region, Request{DaysBack: 45, ForecastHorizon: 5})
	if err != nil {
		t.Fatalf("Run 2: %v", err)
	}
	if len(r1.History.Composite) != len(r2.History.Composite) {
		t.Fatalf("history length mismatch: %d vs %d", len(r1.History.Composite), len(r2.History.Composite))
	}
	for i := range r1.History.Composite {
		if r1.History.Composite[i] != r2.History.Composite[i] {
			t.Fatalf("composite[%d] diverged across cached runs: %v != %v", i, r1.History.Composite[i], r2.History.Composite[i])
		}
	}
}

func TestRunRejectsOutOfRangeHorizon(t *testing.T) {
	o, region := testOrchestrator(t, 8, 10*time.Second)
	_, err := o.Run(context.Background(), region, Request{DaysBack: 30, ForecastHorizon: 0})
	if err == nil {
		t.Fatal("expected an error for forecast_horizon = 0")
	}
}

func TestRunRejectsInvalidRegion(t *testing.T) {
	o, _ := testOrchestrator(t, 8, 10*time.Second)
	bad := domain.Region{ID: "None", Lat: 0, Lon: 0}
	_, err := o.Run(context.Background(), bad, Request{DaysBack: 30, ForecastHorizon: 7})
	if err == nil {
		t.Fatal("expected an error for region id \"None\"")
	}
}

func TestRunReturnsConcurrencySaturatedWhenGlobalCapFull(t *testing.T) {
	o, region := testOrchestrator(t, 1, 10*time.Second)
	o.globalSem <- struct{}{}
	defer func() { <-o.globalSem }()

	_, err := o.Run(context.Background(), region, Request{DaysBack: 30, ForecastHorizon: 7})
	if err != domain.ErrConcurrencySaturated {
		t.Fatalf("err = %v, want ErrConcurrencySaturated", err)
	}
}

func TestRunMarksDegradedOnImmediateDeadline(t *testing.T) {
	o, region := testOrchestrator(t, 8, 1*time.Nanosecond)
	result, err := o.Run(context.Background(), region, Request{DaysBack: 30, ForecastHorizon: 7})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected a degraded result when the request deadline is effectively zero")
	}
}

func TestRequestDefaultValidate(t *testing.T) {
	if err := DefaultRequest().Validate(); err != nil {
		t.Fatalf("DefaultRequest() should validate, got %v", err)
	}
}

func TestRunTwiceWithinTTLYieldsIdenticalResultDigest(t *testing.T) {
	sources, err := registry.NewSourceRegistry(registry.DefaultSourceDefinitions())
	if err != nil {
		t.Fatalf("NewSourceRegistry: %v", err)
	}
	conns, err := connectors.BuildAll(sources, connectors.DefaultBaseURLs(), connectors.DefaultRetryConfig(), true, allKeys)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	c := cache.New(1024, fixedTTL{}, nil)
	harmonizer := harmonize.New(3650, harmonize.DefaultFillBudgets())
	idx, err := index.New(index.DefaultWeights())
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	publisher := metrics.NewPublisher()

	path := filepath.Join(t.TempDir(), "journal.ndjson")
	jour, err := journal.Open(path)
	if err != nil {
		t.Fatalf("journal.Open: %v", err)
	}

	o := New(sources, conns, c, harmonizer, idx, publisher, jour, 8, 8, 10*time.Second)
	region := domain.Region{ID: "us_il", Name: "Illinois", Country: "US", RegionType: domain.RegionTypeState, Lat: 40.0, Lon: -89.0}

	if _, err := o.Run(context.Background(), region, Request{DaysBack: 45, ForecastHorizon: 5}); err != nil {
		t.Fatalf("Run 1: %v", err)
	}
	if _, err := o.Run(context.Background(), region, Request{DaysBack: 45, ForecastHorizon: 5}); err != nil {
		t.Fatalf("Run 2: %v", err)
	}
	if err := jour.AwaitDrain(context.Background()); err != nil {
		t.Fatalf("AwaitDrain: %v", err)
	}
	if err := jour.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("reopen journal: %v", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var records []journal.Record
	for scanner.Scan() {
		var rec journal.Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			t.Fatalf("unmarshal record: %v", err)
		}
		records = append(records, rec)
	}
	if len(records) != 2 {
		t.Fatalf("got %d journal records, want 2", len(records))
	}
	if records[0].ResultDigest == "" {
		t.Fatal("ResultDigest should be populated")
	}
	if records[0].ResultDigest != records[1].ResultDigest {
		t.Errorf("result_digest diverged across cached runs of the same request: %q != %q",
			records[0].ResultDigest, records[1].ResultDigest)
	}
}

func TestFingerprintForIgnoresLatLonForNationalSource(t *testing.T) {
	def := domain.SourceDefinition{
		ID:             "fuelprices",
		Classification: domain.ClassificationNational,
		GeoInputsUsed:  []string{"country"},
	}
	illinois := domain.Region{ID: "us_il", Lat: 40.0, Lon: -89.0}
	arizona := domain.Region{ID: "us_az", Lat: 34.0, Lon: -112.0}

	fpA := fingerprintFor(def, illinois, 60)
	fpB := fingerprintFor(def, arizona, 60)
	if fpA != fpB {
		t.Errorf("NATIONAL source fingerprint varied by lat/lon: %q (IL) != %q (AZ)", fpA, fpB)
	}

	want := connectors.Fingerprint(def.ID, 60, map[string]string{})
	if fpA != want {
		t.Errorf("fingerprintFor = %q, want %q (no geo parts for a NATIONAL source)", fpA, want)
	}
}

func TestFingerprintForVariesByLatLonForRegionalSource(t *testing.T) {
	def := domain.SourceDefinition{
		ID:             "weather",
		Classification: domain.ClassificationRegional,
		GeoInputsUsed:  []string{"lat", "lon"},
	}
	illinois := domain.Region{ID: "us_il", Lat: 40.0, Lon: -89.0}
	arizona := domain.Region{ID: "us_az", Lat: 34.0, Lon: -112.0}

	fpA := fingerprintFor(def, illinois, 60)
	fpB := fingerprintFor(def, arizona, 60)
	if fpA == fpB {
		t.Error("REGIONAL source fingerprint should vary by lat/lon, got identical fingerprints")
	}
}

func TestFingerprintForMatchesConnectorFingerprint(t *testing.T) {
	sources, err := registry.NewSourceRegistry(registry.DefaultSourceDefinitions())
	if err != nil {
		t.Fatalf("NewSourceRegistry: %v", err)
	}
	conns, err := connectors.BuildAll(sources, connectors.DefaultBaseURLs(), connectors.DefaultRetryConfig(), true, allKeys)
	if err != nil {
		t.Fatalf("BuildAll: %v", err)
	}
	region := domain.Region{ID: "us_il", Lat: 40.0, Lon: -89.0}

	for _, def := range sources.List() {
		conn := conns[def.ID]
		fetch := conn.Fetch(context.Background(), region.ID, region.Lat, region.Lon, 60)
		got := fingerprintFor(def, region, 60)
		if got != fetch.Fingerprint {
			t.Errorf("%s: fingerprintFor = %q, connector fetched fingerprint = %q", def.ID, got, fetch.Fingerprint)
		}
	}
}
