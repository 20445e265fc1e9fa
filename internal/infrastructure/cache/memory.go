package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/johnquangdev/capture-stitcher/internal/domain/entities"
)

// MemoryStore is a simple in-memory key-value store with expiration
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
	stop  chan struct{}
	once  sync.Once
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		items: make(map[string]*memoryItem),
		stop:  make(chan struct{}),
	}

	// Start cleanup goroutine to remove expired items
	go store.cleanupExpired(5 * time.Minute)

	return store
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(key string, value string, expiration time.Duration) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = &memoryItem{
		value:      value,
		expireTime: time.Now().Add(expiration),
	}
}

// Get retrieves a value by key (returns empty string if not found or expired)
func (ms *MemoryStore) Get(key string) (string, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	item, exists := ms.items[key]
	if !exists {
		return "", false
	}

	// Check if expired
	if time.Now().After(item.expireTime) {
		return "", false
	}

	return item.value, true
}

// Delete removes a key
func (ms *MemoryStore) Delete(key string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	delete(ms.items, key)
}

// Close stops the cleanup goroutine
func (ms *MemoryStore) Close() {
	ms.once.Do(func() { close(ms.stop) })
}

// cleanupExpired periodically removes expired items
func (ms *MemoryStore) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ms.stop:
			return
		case <-ticker.C:
		}

		ms.mu.Lock()
		now := time.Now()
		for key, item := range ms.items {
			if now.After(item.expireTime) {
				delete(ms.items, key)
			}
		}
		ms.mu.Unlock()
	}
}

// MemorySpeakerCache keeps speaker directories in a MemoryStore.
// It is used when Redis is disabled.
type MemorySpeakerCache struct {
	store *MemoryStore
}

// NewMemorySpeakerCache creates a speaker cache on top of store
func NewMemorySpeakerCache(store *MemoryStore) *MemorySpeakerCache {
	return &MemorySpeakerCache{store: store}
}

// GetSpeakers returns the cached directory for key
func (c *MemorySpeakerCache) GetSpeakers(_ context.Context, key string) (entities.SpeakerDirectory, bool, error) {
	raw, ok := c.store.Get(key)
	if !ok {
		return nil, false, nil
	}
	var dir entities.SpeakerDirectory
	if err := json.Unmarshal([]byte(raw), &dir); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached speakers %s: %w", key, err)
	}
	return dir, true, nil
}

// SetSpeakers caches dir under key for ttl
func (c *MemorySpeakerCache) SetSpeakers(_ context.Context, key string, dir entities.SpeakerDirectory, ttl time.Duration) error {
	raw, err := json.Marshal(dir)
	if err != nil {
		return fmt.Errorf("failed to encode speakers: %w", err)
	}
	c.store.Set(key, string(raw), ttl)
	return nil
}
