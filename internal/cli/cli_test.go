package cli

import (
	"fmt"
	"testing"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

func TestExitCodeForNilIsSuccess(t *testing.T) {
	if code := exitCodeFor(nil); code != ExitSuccess {
		t.Errorf("exitCodeFor(nil) = %d, want %d", code, ExitSuccess)
	}
}

func TestExitCodeForInvalidConfiguration(t *testing.T) {
	err := fmt.Errorf("wrap: %w", domain.ErrInvalidConfiguration)
	if code := exitCodeFor(err); code != ExitInvalidConfiguration {
		t.Errorf("exitCodeFor = %d, want %d", code, ExitInvalidConfiguration)
	}
}

func TestExitCodeForUnknownSourceIsInvalidConfiguration(t *testing.T) {
	err := fmt.Errorf("wrap: %w", domain.ErrUnknownSource)
	if code := exitCodeFor(err); code != ExitInvalidConfiguration {
		t.Errorf("exitCodeFor = %d, want %d", code, ExitInvalidConfiguration)
	}
}

func TestExitCodeForDeadlineExceeded(t *testing.T) {
	err := fmt.Errorf("wrap: %w", domain.ErrDeadlineExceeded)
	if code := exitCodeFor(err); code != ExitDeadlineExceeded {
		t.Errorf("exitCodeFor = %d, want %d", code, ExitDeadlineExceeded)
	}
}

func TestExitCodeForUpstreamUnavailable(t *testing.T) {
	err := fmt.Errorf("wrap: %w", domain.ErrUpstreamUnavailable)
	if code := exitCodeFor(err); code != ExitUpstreamUnavailable {
		t.Errorf("exitCodeFor = %d, want %d", code, ExitUpstreamUnavailable)
	}
}

func TestExitCodeForSelfTestFailure(t *testing.T) {
	if code := exitCodeFor(errSelfTestFailed); code != 1 {
		t.Errorf("exitCodeFor = %d, want 1", code)
	}
}

func TestExitCodeForUnrecognizedErrorIsUsageError(t *testing.T) {
	err := fmt.Errorf("some other failure")
	if code := exitCodeFor(err); code != ExitUsageError {
		t.Errorf("exitCodeFor = %d, want %d", code, ExitUsageError)
	}
}

func TestExitCodeForInvalidInputIsUsageError(t *testing.T) {
	err := fmt.Errorf("wrap: %w", domain.ErrInvalidInput)
	if code := exitCodeFor(err); code != ExitUsageError {
		t.Errorf("exitCodeFor = %d, want %d", code, ExitUsageError)
	}
}

func TestForecastRequiresRegionFlag(t *testing.T) {
	forecastRegion = ""
	err := runForecast(forecastCmd, nil)
	if err == nil {
		t.Fatal("expected an error when --region is omitted")
	}
	if exitCodeFor(err) != ExitUsageError {
		t.Errorf("exitCodeFor(%v) = %d, want %d", err, exitCodeFor(err), ExitUsageError)
	}
}
