package policy

import (
	"sync"
	"time"

	"github.com/velopay/payment_platform_app/internal/core/domain"
)

// cacheEntry memoises one resolved decision. Record is nil when resolution
// legitimately found no applicable record; negative results are cached too
// so an unconfigured context does not hammer the store.
type cacheEntry struct {
	record    *domain.PolicyRecord
	expiresAt time.Time
}

// ResolutionCache memoises (context) -> resolved record per policy family
// with a bounded TTL. Any write to a family's records invalidates that
// family wholesale; resolution is idempotent and re-computable, so coarse
// invalidation is correct. Safe for concurrent readers and writers. The
// cache lives for the duration of the process and warms on first miss.
type ResolutionCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	families map[domain.PolicyFamily]map[string]cacheEntry
	now      func() time.Time
}

// NewResolutionCache builds a cache with the given entry TTL.
func NewResolutionCache(ttl time.Duration) *ResolutionCache {
	return &ResolutionCache{
		ttl:      ttl,
		families: make(map[domain.PolicyFamily]map[string]cacheEntry),
		now:      time.Now,
	}
}

// Get returns the cached resolution for the context, and whether a live
// entry existed. The returned record is nil for a cached negative result.
func (c *ResolutionCache) Get(family domain.PolicyFamily, rc domain.ResolutionContext) (*domain.PolicyRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, ok := c.families[family]
	if !ok {
		return nil, false
	}
	entry, ok := entries[rc.CacheKey()]
	if !ok || c.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.record, true
}

// Put stores a resolution outcome for the context. A nil record caches the
// no-applicable-policy outcome.
func (c *ResolutionCache) Put(family domain.PolicyFamily, rc domain.ResolutionContext, record *domain.PolicyRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.families[family]
	if !ok {
		entries = make(map[string]cacheEntry)
		c.families[family] = entries
	}
	entries[rc.CacheKey()] = cacheEntry{record: record, expiresAt: c.now().Add(c.ttl)}
}

// InvalidateFamily evicts every cached resolution of the family. Write
// paths call this before acknowledging the write, so no reader can observe
// an evicted record afterwards.
func (c *ResolutionCache) InvalidateFamily(family domain.PolicyFamily) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.families, family)
}

// Purge drops every entry. Called on shutdown.
func (c *ResolutionCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.families = make(map[domain.PolicyFamily]map[string]cacheEntry)
}
