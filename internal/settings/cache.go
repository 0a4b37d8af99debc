package settings

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/AesthetixDev/koko/internal/domain"
)

// cache holds tenant settings in memory with TTL-based expiration. The prefix
// lookup runs once per inbound text message, so reads vastly outnumber both
// writes and actual changes.
type cache struct {
	mu      sync.RWMutex
	entries map[int64]*cacheEntry
	ttl     time.Duration
	clock   clockwork.Clock
}

type cacheEntry struct {
	settings  domain.TenantSettings
	expiresAt time.Time
}

func newCache(ttl time.Duration, clock clockwork.Clock) *cache {
	return &cache{
		entries: make(map[int64]*cacheEntry),
		ttl:     ttl,
		clock:   clock,
	}
}

// get returns a copy of the cached settings on hit, (nil, false) on miss or
// expiry. Expired entries are left for the periodic eviction pass; get only
// holds the read lock.
func (c *cache) get(tenantID int64) (*domain.TenantSettings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[tenantID]
	if !ok {
		return nil, false
	}
	if c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}

	settings := entry.settings
	return &settings, true
}

func (c *cache) set(tenantID int64, settings domain.TenantSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[tenantID] = &cacheEntry{
		settings:  settings,
		expiresAt: c.clock.Now().Add(c.ttl),
	}
}

func (c *cache) invalidate(tenantID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, tenantID)
}

// evictExpired removes expired entries, returning the count evicted. Prevents
// unbounded growth across many tenants.
func (c *cache) evictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	evicted := 0
	for tenantID, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, tenantID)
			evicted++
		}
	}
	return evicted
}
