package cli

import (
	"errors"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// Exit codes per spec.md §6's "Exit codes for the CLI entry point."
const (
	ExitSuccess              = 0
	ExitInvalidConfiguration = 2
	ExitUsageError           = 64
	ExitUpstreamUnavailable  = 69
	ExitDeadlineExceeded     = 73
)

// exitCodeFor classifies an error returned from a cobra RunE (or from
// rootCmd.Execute() itself, for flag-parsing failures) into one of the
// declared exit codes. Anything that isn't a recognized domain sentinel
// falls back to a usage error, since cobra's own parsing failures (bad
// flags, unknown subcommands) reach here the same way and are exactly
// that: a usage problem, not a server-side fault.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, domain.ErrInvalidConfiguration):
		return ExitInvalidConfiguration
	case errors.Is(err, domain.ErrUnknownSource):
		return ExitInvalidConfiguration
	case errors.Is(err, domain.ErrDeadlineExceeded):
		return ExitDeadlineExceeded
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return ExitUpstreamUnavailable
	case errors.Is(err, errSelfTestFailed):
		return 1
	default:
		return ExitUsageError
	}
}
