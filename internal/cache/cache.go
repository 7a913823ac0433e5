// Package cache stores external API responses so repeated scoring of the
// same artifact does not hammer the hub or GitHub. Two backends: Redis for
// deployments, an in-memory TTL map for tests and single-node runs.
package cache

import (
	"context"
	"sync"
	"time"
)

// Key prefixes and TTLs per cached kind.
const (
	KeyModel        = "hf:model:"
	KeyDataset      = "hf:dataset:"
	KeyRepo         = "gh:repo:"
	KeyContributors = "gh:contributors:"

	TTLModel        = time.Hour
	TTLDataset      = time.Hour
	TTLRepo         = 6 * time.Hour
	TTLContributors = 12 * time.Hour
)

// Store is the cache contract the adapters consume. Implementations fail
// soft: a broken cache behaves like an empty one.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration)
	Delete(ctx context.Context, key string)
}

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

func (i *memoryItem) expired() bool {
	return time.Now().After(i.expiresAt)
}

// MemoryStore is a thread-safe in-process TTL cache.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*memoryItem
}

// NewMemoryStore creates the store and starts a background sweeper.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{items: make(map[string]*memoryItem)}
	go s.sweep()
	return s
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for key, item := range s.items {
			if item.expired() {
				delete(s.items, key)
			}
		}
		s.mu.Unlock()
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool) {
	s.mu.RLock()
	item, ok := s.items[key]
	s.mu.RUnlock()

	if !ok || item.expired() {
		return nil, false
	}
	return item.data, true
}

func (s *MemoryStore) Set(_ context.Context, key string, data []byte, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = &memoryItem{data: data, expiresAt: time.Now().Add(ttl)}
}

func (s *MemoryStore) Delete(_ context.Context, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
}

// Size reports the number of entries, expired or not.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
