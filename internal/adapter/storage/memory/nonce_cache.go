package memory

import (
	"context"
	"sync"
	"time"
)

// sweepInterval bounds how often the full eviction pass runs.
const sweepInterval = 256

// NonceCache is a process-wide replay seen-set with TTL-based eviction.
// Expired entries are dropped lazily on access and in a periodic full
// sweep, so the cache stays bounded by the number of live nonces.
type NonceCache struct {
	mu   sync.Mutex
	seen map[string]time.Time // key -> expiry
	ops  int
	now  func() time.Time
}

// NewNonceCache creates an empty nonce cache.
func NewNonceCache() *NonceCache {
	return &NonceCache{
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// WithClock overrides the time source (testing).
func (c *NonceCache) WithClock(now func() time.Time) *NonceCache {
	c.now = now
	return c
}

// CheckAndSet atomically checks whether (walletID, nonce) is live, marking
// it seen for ttl if not. Returns true when the nonce is new.
func (c *NonceCache) CheckAndSet(ctx context.Context, walletID string, nonce string, ttl time.Duration) (bool, error) {
	key := walletID + ":" + nonce
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ops++
	if c.ops%sweepInterval == 0 {
		c.sweep(now)
	}

	if expiry, ok := c.seen[key]; ok && now.Before(expiry) {
		return false, nil
	}
	c.seen[key] = now.Add(ttl)
	return true, nil
}

// Len returns the number of tracked entries, live or awaiting sweep.
func (c *NonceCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}

func (c *NonceCache) sweep(now time.Time) {
	for key, expiry := range c.seen {
		if !now.Before(expiry) {
			delete(c.seen, key)
		}
	}
}
