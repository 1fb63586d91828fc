// Package cache provides translation memory backends.
//
// A cache maps a content key (see loom.CacheKey) to a previously
// produced translation, so repeated bundle entries skip the provider.
// Backends range from a process-local map to Redis and SQLite for
// memories shared across runs.
package cache

// TranslationCache is the interface for translation memory backends.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns empty string and false if not found or expired.
	Get(key string) (string, bool)

	// Set stores a translation in the cache.
	Set(key string, value string) error
}
