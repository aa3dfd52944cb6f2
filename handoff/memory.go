package handoff

import (
	"context"
	"time"

	"github.com/lvillar/docsmith/internal/cache"
)

// MemoryStore keeps payloads in process memory.
type MemoryStore struct {
	c *cache.TTLCache[string, []byte]
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{c: cache.NewTTLCache[string, []byte]()}
}

// Put stores a copy of value under key.
func (m *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.c.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Take returns and removes the value under key.
func (m *MemoryStore) Take(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, ok := m.c.Take(key)
	if !ok {
		return nil, ErrNotFound
	}
	return v, nil
}

// Sweep drops expired payloads and returns how many remain.
func (m *MemoryStore) Sweep() int {
	m.c.Sweep()
	return m.c.Len()
}
