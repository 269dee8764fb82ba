package secrets

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/nisimpson/tenantmap/internal/metrics"
	"golang.org/x/sync/singleflight"
)

// defaultFetchTimeout bounds a shared fetch once it no longer follows the
// caller that started it.
const defaultFetchTimeout = 30 * time.Second

type cached struct {
	values  map[string]string
	expires time.Time
}

// Cache memoizes a Source per path. Concurrent misses for the same path share
// one fetch. A ttl of zero disables expiry.
type Cache struct {
	source       Source
	ttl          time.Duration
	fetchTimeout time.Duration
	now          func() time.Time

	sfg     singleflight.Group
	mu      sync.RWMutex
	entries map[string]cached
}

// NewCache returns an empty cache in front of source.
func NewCache(source Source, ttl time.Duration) *Cache {
	return &Cache{
		source:       source,
		ttl:          ttl,
		fetchTimeout: defaultFetchTimeout,
		now:          time.Now,
		entries:      make(map[string]cached),
	}
}

// Get returns the secret at path, fetching it when absent or expired. The
// returned map is a copy.
func (c *Cache) Get(ctx context.Context, path string) (map[string]string, error) {
	if values, ok := c.lookup(path); ok {
		metrics.SecretFetchTotal.WithLabelValues("hit").Inc()
		return values, nil
	}

	// the fetch outlives any single caller so one cancellation does not fail
	// everyone sharing it
	ch := c.sfg.DoChan(path, func() (any, error) {
		if values, ok := c.lookup(path); ok {
			return values, nil
		}

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		values, err := c.source.Fetch(fetchCtx, path)
		if err != nil {
			metrics.SecretFetchTotal.WithLabelValues("error").Inc()
			return nil, err
		}
		metrics.SecretFetchTotal.WithLabelValues("miss").Inc()

		entry := cached{values: maps.Clone(values)}
		if c.ttl > 0 {
			entry.expires = c.now().Add(c.ttl)
		}

		c.mu.Lock()
		c.entries[path] = entry
		c.mu.Unlock()
		return values, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return maps.Clone(res.Val.(map[string]string)), nil
	}
}

// Expires reports when the entry for path goes stale. The zero time means
// never, or not cached.
func (c *Cache) Expires(path string) time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[path].expires
}

// Invalidate drops path so the next Get fetches it again.
func (c *Cache) Invalidate(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}

func (c *Cache) lookup(path string) (map[string]string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[path]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if !entry.expires.IsZero() && !c.now().Before(entry.expires) {
		return nil, false
	}
	return maps.Clone(entry.values), true
}
