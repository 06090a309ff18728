package cache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure-Go driver, no CGO

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// DiskTier is an optional second-level, persistent cache for
// SourceFetch rows, so a process restart doesn't force re-fetching
// every upstream on the first request. It is grounded on the
// teacher's internal/infra/sqlite.DB: WAL mode, a pure-Go driver,
// single-writer connection pool, idempotent migration on open.
type DiskTier struct {
	db *sql.DB
}

// OpenDiskTier opens (creating if absent) a WAL-mode sqlite database
// at dir/cache.db and runs its migration.
func OpenDiskTier(dir string) (*DiskTier, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DiskTier{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return d, nil
}

func (d *DiskTier) migrate() error {
	_, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS fetch_cache (
		fingerprint TEXT PRIMARY KEY,
		source_id   TEXT NOT NULL,
		region_id   TEXT NOT NULL,
		payload     TEXT NOT NULL,
		expires_at  INTEGER NOT NULL
	)`)
	return err
}

// Close shuts down the underlying connection.
func (d *DiskTier) Close() error { return d.db.Close() }

// Ping verifies the underlying sqlite connection is still reachable.
func (d *DiskTier) Ping() error { return d.db.Ping() }

// Get returns the cached fetch for fingerprint, ignoring (and lazily
// deleting) any row that has expired.
func (d *DiskTier) Get(fingerprint string) (domain.SourceFetch, bool) {
	var payload string
	var expiresAt int64
	err := d.db.QueryRow(
		`SELECT payload, expires_at FROM fetch_cache WHERE fingerprint = ?`, fingerprint,
	).Scan(&payload, &expiresAt)
	if err != nil {
		return domain.SourceFetch{}, false
	}
	if time.Now().Unix() > expiresAt {
		d.db.Exec(`DELETE FROM fetch_cache WHERE fingerprint = ?`, fingerprint)
		return domain.SourceFetch{}, false
	}

	var fetch domain.SourceFetch
	if err := json.Unmarshal([]byte(payload), &fetch); err != nil {
		return domain.SourceFetch{}, false
	}
	return fetch, true
}

// Put persists fetch under fingerprint with the given TTL.
func (d *DiskTier) Put(fingerprint string, fetch domain.SourceFetch, ttl time.Duration) error {
	payload, err := json.Marshal(fetch)
	if err != nil {
		return fmt.Errorf("marshal fetch: %w", err)
	}
	_, err = d.db.Exec(
		`INSERT INTO fetch_cache (fingerprint, source_id, region_id, payload, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET
			payload=excluded.payload,
			expires_at=excluded.expires_at`,
		fingerprint, fetch.SourceID, fetch.RegionID, string(payload), time.Now().Add(ttl).Unix(),
	)
	return err
}
