package directory

import (
	"context"
	"sync"
	"time"

	"github.com/tripmates/backend/internal/models"
)

type cacheEntry struct {
	profile models.PublicProfile
	expires time.Time
}

// CachingProvider wraps another Provider with a TTL-based in-memory cache for
// profile lookups. Searches always go to the underlying provider.
type CachingProvider struct {
	base Provider
	ttl  time.Duration

	mu    sync.RWMutex
	items map[string]cacheEntry
}

// NewCachingProvider returns a Provider that caches profile lookups for the provided TTL.
func NewCachingProvider(base Provider, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachingProvider{
		base:  base,
		ttl:   ttl,
		items: make(map[string]cacheEntry),
	}
}

// Profile returns a cached profile when fresh, otherwise it delegates to the
// underlying provider and stores the result.
func (c *CachingProvider) Profile(ctx context.Context, id string) (models.PublicProfile, error) {
	if c == nil || c.base == nil {
		return models.PublicProfile{}, ErrProviderUnavailable
	}

	now := time.Now()

	c.mu.RLock()
	entry, ok := c.items[id]
	c.mu.RUnlock()
	if ok && now.Before(entry.expires) {
		return entry.profile, nil
	}

	profile, err := c.base.Profile(ctx, id)
	if err != nil {
		return models.PublicProfile{}, err
	}

	c.mu.Lock()
	c.items[id] = cacheEntry{profile: profile, expires: now.Add(c.ttl)}
	c.mu.Unlock()

	return profile, nil
}

// Search delegates to the underlying provider.
func (c *CachingProvider) Search(ctx context.Context, query, excludeID string, limit int) ([]models.PublicProfile, error) {
	if c == nil || c.base == nil {
		return nil, ErrProviderUnavailable
	}
	return c.base.Search(ctx, query, excludeID, limit)
}

// Invalidate drops a cached profile, e.g. after the user edits it.
func (c *CachingProvider) Invalidate(id string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	delete(c.items, id)
	c.mu.Unlock()
}

var _ Provider = (*CachingProvider)(nil)
