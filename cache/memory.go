package cache

import (
	"sync"
	"time"
)

// memoryEntry is a cached translation with its expiry deadline. A zero
// deadline means the entry never expires.
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryCache is a thread-safe in-memory translation memory with TTL
// support. Expired entries are dropped lazily on access.
type InMemoryCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewInMemoryCache creates a new in-memory cache with the specified TTL.
// If ttlSeconds is 0 or negative, entries never expire.
func NewInMemoryCache(ttlSeconds int) *InMemoryCache {
	var ttl time.Duration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	return &InMemoryCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Get retrieves a value from the cache.
// Returns the value and true if found and not expired, empty string and false otherwise.
func (c *InMemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return "", false
	}
	if entry.expired(time.Now()) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

// Set stores a value in the cache, replacing any previous entry and
// restarting its TTL.
func (c *InMemoryCache) Set(key string, value string) error {
	entry := memoryEntry{value: value}
	if c.ttl > 0 {
		entry.expiresAt = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
	return nil
}

// Delete removes a single entry.
func (c *InMemoryCache) Delete(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}

// Len returns the number of entries in the cache (including expired ones
// not yet collected).
func (c *InMemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries from the cache.
func (c *InMemoryCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]memoryEntry)
}

// Entries returns all non-expired entries as key-value pairs.
// This is used for cache export.
func (c *InMemoryCache) Entries() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]string, len(c.entries))
	now := time.Now()
	for key, entry := range c.entries {
		if entry.expired(now) {
			continue
		}
		result[key] = entry.value
	}
	return result
}

// Verify InMemoryCache implements TranslationCache
var _ TranslationCache = (*InMemoryCache)(nil)
