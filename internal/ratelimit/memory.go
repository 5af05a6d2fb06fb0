package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryCounter struct {
	count     int64
	expiresAt time.Time
}

// MemoryCounterStore is an in-process CounterStore for tests and single-node
// development setups. Production deployments use the Postgres adapter.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]memoryCounter
	now      func() time.Time
}

func NewMemoryCounterStore() *MemoryCounterStore {
	return &MemoryCounterStore{
		counters: make(map[string]memoryCounter),
		now:      time.Now,
	}
}

func (s *MemoryCounterStore) Increment(_ context.Context, identity string, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[identity]
	if !ok || !c.expiresAt.After(now) {
		c = memoryCounter{count: 0, expiresAt: now.Add(window)}
	}
	c.count++
	s.counters[identity] = c
	return c.count, nil
}
