package expert

import (
	"context"
	"sync"
	"time"
)

// DefaultCacheTTL matches how long a crew answer stays fresh enough to reuse.
const DefaultCacheTTL = time.Hour

// Cache memoizes crew answers keyed by request fingerprint, so re-triggering
// the same stage with the same selections does not re-consult the experts.
// It sits in front of the Gateway and changes latency only, never outcomes:
// failed invocations are not stored, and a stored answer that later proves
// unusable must be dropped with Evict so a retry reaches the experts again.
type Cache struct {
	inner Invoker
	ttl   time.Duration
	now   func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	raw     string
	expires time.Time
}

// NewCache wraps an invoker with TTL memoization.
func NewCache(inner Invoker, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Invoke returns a fresh cached answer when available, otherwise delegates.
func (c *Cache) Invoke(ctx context.Context, req Request) (string, error) {
	key := req.Fingerprint()

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && c.now().Before(entry.expires) {
		c.mu.Unlock()
		return entry.raw, nil
	}
	c.mu.Unlock()

	// The session's control flow is strictly sequential, so there is no
	// duplicate in-flight invocation to collapse here.
	raw, err := c.inner.Invoke(ctx, req)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{raw: raw, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return raw, nil
}

// Evict drops the stored answer for a fingerprint. Callers use it when a
// reply that arrived cleanly turns out to carry no usable payload; without
// the eviction a retry would replay the same bad text for the whole TTL.
func (c *Cache) Evict(fingerprint string) {
	c.mu.Lock()
	delete(c.entries, fingerprint)
	c.mu.Unlock()
}
