// Package cache provides translation-memory implementations: a process-local
// TTL cache and a Redis-backed cache, plus JSON export/import for seeding a
// memory between environments.
package cache

// TranslationCache is the interface for segment-level translation memory.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns false if absent or expired.
	Get(key string) (string, bool)

	// Set stores a translation.
	Set(key string, value string) error
}
