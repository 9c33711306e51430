// Package cache memoizes resolved streams between calls. only the Store
// interface is part of the resolver contract.
package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// Store must be safe for concurrent use, bounded and ttl based.
type Store[V any] interface {
	Get(key string) (V, bool)
	Set(key string, value V, ttl time.Duration)
	Delete(key string)
	Clear()
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is an in-process Store with a per entry ttl. the least recently
// used entry is evicted once capacity is reached.
type Memory[V any] struct {
	entries *lru.Cache[string, entry[V]]
	now     func() time.Time
}

func NewMemory[V any](capacity int) (*Memory[V], error) {
	if capacity <= 0 {
		return nil, errors.Errorf("invalid cache capacity %d", capacity)
	}
	entries, err := lru.New[string, entry[V]](capacity)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create lru")
	}
	return &Memory[V]{
		entries: entries,
		now:     time.Now,
	}, nil
}

func (m *Memory[V]) Get(key string) (V, bool) {
	var zero V
	item, ok := m.entries.Get(key)
	if !ok {
		return zero, false
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		m.entries.Remove(key)
		return zero, false
	}
	return item.value, true
}

// Set stores value for ttl. a ttl <= 0 never expires.
func (m *Memory[V]) Set(key string, value V, ttl time.Duration) {
	item := entry[V]{value: value}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.entries.Add(key, item)
}

func (m *Memory[V]) Delete(key string) {
	m.entries.Remove(key)
}

func (m *Memory[V]) Clear() {
	m.entries.Purge()
}

func (m *Memory[V]) Len() int {
	return m.entries.Len()
}
