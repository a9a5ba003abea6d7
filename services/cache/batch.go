package cache

import (
	"sync"
	"time"

	"github.com/dvoryanov/tipscraper/internal/tip"
)

// BatchCache holds the most recent extraction batch plus its timestamp.
// The batch is replaced wholesale on every refresh, never merged, so
// readers always observe one coherent extraction pass. Last writer wins;
// tip data is idempotently re-derivable from a fresh fetch.
type BatchCache struct {
	mu        sync.RWMutex
	batch     []tip.Tip
	fetchedAt time.Time
	ttl       time.Duration
}

// NewBatchCache creates an empty batch cache with the given freshness TTL.
func NewBatchCache(ttl time.Duration) *BatchCache {
	return &BatchCache{ttl: ttl}
}

// Put replaces the whole batch in a single assignment.
func (c *BatchCache) Put(batch []tip.Tip) {
	stored := make([]tip.Tip, len(batch))
	copy(stored, batch)

	c.mu.Lock()
	c.batch = stored
	c.fetchedAt = time.Now()
	c.mu.Unlock()
}

// Snapshot returns a copy of the current batch, its age, and whether it is
// still fresh. An empty cache reports zero age and stale.
func (c *BatchCache) Snapshot() ([]tip.Tip, time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.fetchedAt.IsZero() {
		return nil, 0, false
	}

	batch := make([]tip.Tip, len(c.batch))
	copy(batch, c.batch)

	age := time.Since(c.fetchedAt)
	return batch, age, age <= c.ttl
}

// Len returns the size of the cached batch.
func (c *BatchCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.batch)
}
