// Package cache implements the fetch cache described in spec §4.3:
// at-most-one-in-flight loads per fingerprint, per-source TTLs,
// negative caching for error results, and bounded size via LRU
// eviction. The in-memory structure is adapted from the teacher's
// model pool (internal/infra/engine/pool.go) — a map plus
// container/list for O(1) LRU, with reference counting swapped out
// for a TTL check since fetch cache entries aren't held open by
// callers the way a loaded model is.
package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/fieldpulse/fieldpulse/internal/domain"
)

// TTLPolicy resolves the per-source positive TTL applied to ok/empty
// fetches, keyed on source id only. Error results never reach it: the
// Cache applies the short negativeTTL to them itself.
type TTLPolicy interface {
	TTLFor(sourceID string) (time.Duration, bool)
}

const defaultTTL = 15 * time.Minute
const negativeTTL = 30 * time.Second

type entry struct {
	fingerprint string
	fetch       domain.SourceFetch
	expiresAt   time.Time
	element     *list.Element
}

// call tracks one in-flight load so concurrent callers with the same
// fingerprint share a single upstream call (spec §4.3 item 1).
type call struct {
	done   chan struct{}
	result domain.SourceFetch
}

// Cache is an in-memory, bounded, single-flighted fetch cache. It
// implements domain.Cache.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]*entry
	lru        *list.List
	maxEntries int
	ttl        TTLPolicy
	inflight   map[string]*call
	disk       *DiskTier
}

// New builds a Cache bounded to maxEntries, consulting ttl for the
// per-source positive TTL. disk may be nil to run memory-only.
func New(maxEntries int, ttl TTLPolicy, disk *DiskTier) *Cache {
	return &Cache{
		entries:    make(map[string]*entry),
		lru:        list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		inflight:   make(map[string]*call),
		disk:       disk,
	}
}

// GetOrFetch satisfies domain.Cache. See package doc and spec §4.3.
func (c *Cache) GetOrFetch(ctx context.Context, fingerprint string, load domain.Loader) domain.SourceFetch {
	c.mu.Lock()
	if e, ok := c.entries[fingerprint]; ok && time.Now().Before(e.expiresAt) {
		c.lru.MoveToFront(e.element)
		result := e.fetch
		c.mu.Unlock()
		return result
	}

	if inFlight, ok := c.inflight[fingerprint]; ok {
		c.mu.Unlock()
		return awaitCall(ctx, inFlight)
	}

	this := &call{done: make(chan struct{})}
	c.inflight[fingerprint] = this
	c.mu.Unlock()

	result := c.loadWithDisk(ctx, fingerprint, load)

	c.mu.Lock()
	delete(c.inflight, fingerprint)
	c.store(fingerprint, result)
	c.mu.Unlock()

	this.result = result
	close(this.done)
	return result
}

// loadWithDisk consults the optional disk tier before calling load,
// and persists a successful result back to disk after.
func (c *Cache) loadWithDisk(ctx context.Context, fingerprint string, load domain.Loader) domain.SourceFetch {
	if c.disk != nil {
		if cached, ok := c.disk.Get(fingerprint); ok {
			return cached
		}
	}
	result := load(ctx)
	if c.disk != nil && result.Status != domain.FetchStatusError {
		c.disk.Put(fingerprint, result, c.positiveTTL(result.SourceID))
	}
	return result
}

func awaitCall(ctx context.Context, call *call) domain.SourceFetch {
	select {
	case <-call.done:
		return call.result
	case <-ctx.Done():
		return domain.SourceFetch{Status: domain.FetchStatusError, ErrorKind: domain.ErrorKindDeadlineExceeded}
	}
}

// store inserts or updates the entry for fingerprint and evicts the
// least-recently-used entry if the cache is over capacity. Caller
// holds c.mu.
func (c *Cache) store(fingerprint string, fetch domain.SourceFetch) {
	ttl := c.ttlForResult(fetch)
	if e, ok := c.entries[fingerprint]; ok {
		e.fetch = fetch
		e.expiresAt = time.Now().Add(ttl)
		c.lru.MoveToFront(e.element)
		return
	}

	e := &entry{fingerprint: fingerprint, fetch: fetch, expiresAt: time.Now().Add(ttl)}
	e.element = c.lru.PushFront(e)
	c.entries[fingerprint] = e

	for c.maxEntries > 0 && len(c.entries) > c.maxEntries {
		c.evictOldest()
	}
}

func (c *Cache) evictOldest() {
	back := c.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	c.lru.Remove(back)
	delete(c.entries, e.fingerprint)
}

func (c *Cache) ttlForResult(fetch domain.SourceFetch) time.Duration {
	if fetch.Status == domain.FetchStatusError {
		return negativeTTL
	}
	return c.positiveTTL(fetch.SourceID)
}

func (c *Cache) positiveTTL(sourceID string) time.Duration {
	if c.ttl == nil {
		return defaultTTL
	}
	if ttl, ok := c.ttl.TTLFor(sourceID); ok {
		return ttl
	}
	return defaultTTL
}

// Len reports the number of entries held in memory. An expired entry
// is counted until it is replaced or evicted.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
