package cache

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore keeps entries in process memory with a TTL and a background janitor.
type MemoryStore struct {
	items *gocache.Cache
}

// NewMemoryStore creates a MemoryStore. ttl <= 0 means entries never expire.
func NewMemoryStore(ttl, cleanupInterval time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryStore{items: gocache.New(ttl, cleanupInterval)}
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.items.Get(key)
	if !ok {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	return data, ok, nil
}

// Set implements Store
func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.items.SetDefault(key, value)
	return nil
}

// InvalidatePrefix implements Store
func (s *MemoryStore) InvalidatePrefix(_ context.Context, prefix string) (int, error) {
	removed := 0
	for key := range s.items.Items() {
		if strings.HasPrefix(key, prefix) {
			s.items.Delete(key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of unexpired entries
func (s *MemoryStore) Len() int {
	return s.items.ItemCount()
}
