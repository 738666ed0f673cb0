package bigquery

import (
	"context"
	"sync"
	"time"
)

type cacheKey struct {
	query          string
	useStandardSQL bool
}

type cacheEntry struct {
	done chan struct{}

	// Only read after done is closed.
	ref       TableReference
	err       error
	writtenAt time.Time
}

// resultCache maps (query, dialect) to the table that already holds its results.
// At most one computation is in flight per key; callers that race on the same
// key wait on the winner's entry and share its outcome.
type resultCache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries map[cacheKey]*cacheEntry
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{
		ttl:     ttl,
		entries: map[cacheKey]*cacheEntry{},
	}
}

// resolve returns the cached table for key, invoking compute at most once per
// key per TTL window. Failed computations are shared with concurrent waiters
// but evicted immediately so the next caller gets a fresh attempt.
func (c *resultCache) resolve(ctx context.Context, key cacheKey, compute func() (TableReference, error)) (TableReference, bool, error) {
	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && !c.expired(entry) {
		c.mu.Unlock()
		select {
		case <-entry.done:
		case <-ctx.Done():
			return TableReference{}, false, ctx.Err()
		}

		return entry.ref, true, entry.err
	}

	entry := &cacheEntry{done: make(chan struct{})}
	c.entries[key] = entry
	c.mu.Unlock()

	entry.ref, entry.err = compute()
	entry.writtenAt = time.Now()
	close(entry.done)

	if entry.err != nil {
		c.mu.Lock()
		if c.entries[key] == entry {
			delete(c.entries, key)
		}
		c.mu.Unlock()
	}

	return entry.ref, false, entry.err
}

func (c *resultCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// expired is purely age based, measured from write time. In-flight entries never expire.
func (c *resultCache) expired(entry *cacheEntry) bool {
	select {
	case <-entry.done:
		return time.Since(entry.writtenAt) >= c.ttl
	default:
		return false
	}
}
