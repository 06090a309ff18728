package domain

import "errors"

// ─── Error Kind Taxonomy ────────────────────────────────────────────────────
// spec.md §7 classifies failures by kind, not by Go type, because most of
// them are recovered locally (into a SourceFetch or a degraded result)
// rather than propagated. ErrorKind is the wire-visible label; the
// sentinel errors below are the in-process signal that maps to it.

type ErrorKind string

const (
	ErrorKindInvalidInput         ErrorKind = "invalid_input"
	ErrorKindInvalidConfiguration ErrorKind = "invalid_configuration"
	ErrorKindUpstreamUnavailable  ErrorKind = "upstream_unavailable"
	ErrorKindMissingCredentials   ErrorKind = "missing_credentials"
	ErrorKindRateLimited          ErrorKind = "rate_limited"
	ErrorKindInsufficientOverlap  ErrorKind = "insufficient_overlap"
	ErrorKindDeadlineExceeded     ErrorKind = "deadline_exceeded"
	ErrorKindAllSourcesMissing    ErrorKind = "degraded_all_sources_missing"
	ErrorKindInternal             ErrorKind = "internal"
)

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Request-validation errors (client-visible 400).
	ErrInvalidInput = errors.New("invalid input")

	// Startup/construction errors (fatal, never recovered mid-request).
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrUnknownSource        = errors.New("unknown source id")

	// Connector-layer errors (recorded on SourceFetch, never propagated).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMissingCredentials  = errors.New("missing credentials")
	ErrRateLimited         = errors.New("rate limited")

	// Harmonizer errors (recorded as a status flag — the harmonizer itself
	// never fails a request).
	ErrInsufficientOverlap = errors.New("insufficient overlap with target window")

	// Orchestration errors.
	ErrDeadlineExceeded     = errors.New("request deadline exceeded")
	ErrConcurrencySaturated = errors.New("global forecast concurrency cap saturated")

	// Index construction — returned by index.New at startup for an
	// invalid weight configuration; never returned by a request.
	ErrInvalidWeights = errors.New("sub-index weights must be non-negative and sum > 0")
)
