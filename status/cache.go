package status

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CacheTTL bounds how stale a cached resolution may be. It is independent of
// any status override expiry.
const CacheTTL = 60 * time.Second

// CacheKey returns the cache key for a store's resolution.
func CacheKey(storeID uuid.UUID) string {
	return "store_status_" + storeID.String()
}

// Cache memoizes resolutions per store. It is a performance optimization
// only, never a source of truth; implementations may drop entries at any
// time.
type Cache interface {
	Get(key string) (Resolution, bool)
	Set(key string, res Resolution, ttl time.Duration)
	Delete(key string)
}

type memoryEntry struct {
	res       Resolution
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is an in-process Cache with per-entry TTL, safe for concurrent use.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

func (m *Memory) Get(key string) (Resolution, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	if !ok || entry.expired(time.Now()) {
		return Resolution{}, false
	}
	return entry.res, true
}

func (m *Memory) Set(key string, res Resolution, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Drop expired entries on each write so the map does not grow unbounded.
	now := time.Now()
	for k, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, k)
		}
	}

	entry := memoryEntry{res: res}
	if ttl > 0 {
		entry.expiresAt = now.Add(ttl)
	}
	m.entries[key] = entry
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Noop is a Cache that stores nothing. Useful in tests and as a fallback
// when caching is disabled.
type Noop struct{}

func (Noop) Get(string) (Resolution, bool)         { return Resolution{}, false }
func (Noop) Set(string, Resolution, time.Duration) {}
func (Noop) Delete(string)                         {}
