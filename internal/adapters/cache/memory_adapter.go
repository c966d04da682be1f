package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/r1chc/Cookie-Spots-sub000/internal/domain/providers"
)

// MemoryAdapter implements the CacheProvider interface with a
// mutex-guarded in-process map. Entries expire passively: staleness is
// checked at read time, there is no background sweep. Used when Redis is
// unavailable and as the cache double in tests.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryAdapter creates a new in-process cache adapter
func NewMemoryAdapter() providers.CacheProvider {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// NewMemoryAdapterWithClock creates an adapter with an injectable clock (used for tests)
func NewMemoryAdapterWithClock(now func() time.Time) providers.CacheProvider {
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("key not found: %s", key)
	}
	if !entry.expiresAt.IsZero() && a.now().After(entry.expiresAt) {
		a.mu.Lock()
		delete(a.entries, key)
		a.mu.Unlock()
		return nil, fmt.Errorf("key not found: %s", key)
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	var expiresAt time.Time
	if expirationSeconds > 0 {
		expiresAt = a.now().Add(time.Duration(expirationSeconds) * time.Second)
	}

	a.mu.Lock()
	a.entries[key] = memoryEntry{value: stored, expiresAt: expiresAt}
	a.mu.Unlock()
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	delete(a.entries, key)
	a.mu.Unlock()
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	_, err := a.Get(ctx, key)
	if err != nil {
		return false, nil
	}
	return true, nil
}
