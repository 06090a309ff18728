// Package journal is the append-only forecast journal of spec §4.8:
// evidence of completed forecasts for audit and replay, never a system
// of record. Writes are best-effort, non-blocking and serialized
// through a single background goroutine so concurrent requests never
// contend on the underlying file.
package journal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// Record is one line of the NDJSON journal file (spec §6 "Persisted
// state"). ResultDigest is a SHA-256 over the result's canonical JSON
// encoding, letting a replay compare a recomputed forecast against the
// one that was actually returned without storing the full payload.
type Record struct {
	ID             string    `json:"id"`
	RegionID       string    `json:"region_id"`
	CreatedAt      time.Time `json:"created_at_iso"`
	FingerprintHex string    `json:"fingerprint_hex"`
	ResultDigest   string    `json:"result_digest_hex"`
	ModelName      string    `json:"model_name"`
	HorizonDays    int       `json:"horizon"`
}

// entry is the queue element carrying one Record to the writer
// goroutine.
type entry struct {
	record Record
}

// Journal owns the single writer goroutine and the file handle. A nil
// *Journal (returned by Open when path is empty) is a legal no-op
// journal: Append silently does nothing, matching spec §6's "empty
// disables journaling."
type Journal struct {
	queue  chan entry
	done   chan struct{}
	file   *os.File
	closed chan struct{}
}

// batchSize is how many appended records accumulate before an explicit
// fsync, trading a small audit-window of possible loss on crash for
// not syncing on every single request (spec §4.8: "fsync batched").
const batchSize = 20

// queueDepth bounds how many pending records Append will buffer before
// it starts dropping writes rather than blocking the caller — the
// journal must never slow down or fail a forecast response.
const queueDepth = 256

// Open appends to (creating if absent) the NDJSON file at path and
// starts its writer goroutine. An empty path returns a nil *Journal
// that Append treats as a no-op, per spec §6.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j := &Journal{
		queue:  make(chan entry, queueDepth),
		done:   make(chan struct{}),
		file:   f,
		closed: make(chan struct{}),
	}
	go j.run()
	return j, nil
}

// Append enqueues a record for the writer goroutine without blocking
// the caller. On a full queue the write is dropped and logged; on a
// nil Journal Append does nothing — spec §4.8's
// "writes are best-effort and non-blocking; a failed write logs a
// warning but does not fail the response."
func (j *Journal) Append(result domain.ForecastResult, fingerprint string) {
	if j == nil {
		return
	}
	rec := Record{
		ID:             uuid.NewString(),
		RegionID:       result.RegionID,
		CreatedAt:      result.CreatedAt,
		FingerprintHex: fingerprint,
		ResultDigest:   digest(result),
		ModelName:      result.ModelName,
		HorizonDays:    result.HorizonDays,
	}
	select {
	case j.queue <- entry{record: rec}:
	default:
		log.Printf("[journal] WARNING: queue full, dropping record for region %s", result.RegionID)
	}
}

// Close stops accepting new records, drains the queue, and closes the
// underlying file. Safe to call on a nil Journal.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	close(j.queue)
	<-j.closed
	return j.file.Close()
}

func (j *Journal) run() {
	defer close(j.closed)
	enc := json.NewEncoder(j.file)
	written := 0
	for e := range j.queue {
		if err := enc.Encode(e.record); err != nil {
			log.Printf("[journal] WARNING: failed to write record for region %s: %v", e.record.RegionID, err)
			continue
		}
		written++
		if written%batchSize == 0 {
			if err := j.file.Sync(); err != nil {
				log.Printf("[journal] WARNING: fsync failed: %v", err)
			}
		}
	}
	if written > 0 {
		if err := j.file.Sync(); err != nil {
			log.Printf("[journal] WARNING: final fsync failed: %v", err)
		}
	}
}

// digest returns a hex SHA-256 over result's canonical JSON encoding,
// with CreatedAt zeroed first. CreatedAt is set from wall-clock time
// on every Run and carries no forecast information, so including it
// would make result_digest differ across two otherwise-identical runs
// of the same request — spec §8 scenario 1 requires the opposite: the
// same request run twice (e.g. a cache hit within TTL) must yield an
// identical result_digest. Map iteration order in ModelParams/History
// could in principle vary the byte stream, but encoding/json always
// sorts map keys, so the digest is otherwise stable across repeated
// marshals of an identical value.
func digest(result domain.ForecastResult) string {
	result.CreatedAt = time.Time{}
	b, err := json.Marshal(result)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// AwaitDrain blocks until ctx is done or the queue is empty, intended
// for tests and graceful shutdown that want to observe all pending
// writes land before exiting. It does not prevent new Appends.
func (j *Journal) AwaitDrain(ctx context.Context) error {
	if j == nil {
		return nil
	}
	for {
		if len(j.queue) == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Millisecond):
		}
	}
}
