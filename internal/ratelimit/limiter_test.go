package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock counter store for testing
type mockCounterStore struct {
	incrementFunc func(ctx context.Context, identity string, window time.Duration) (int64, error)
}

func (m *mockCounterStore) Increment(ctx context.Context, identity string, window time.Duration) (int64, error) {
	return m.incrementFunc(ctx, identity, window)
}

func TestCheckAndCount_WindowBudget(t *testing.T) {
	var count int64
	store := &mockCounterStore{
		incrementFunc: func(ctx context.Context, identity string, window time.Duration) (int64, error) {
			count++
			return count, nil
		},
	}
	limiter := NewFixedWindowLimiter(store, 5, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		assert.True(t, limiter.CheckAndCount(ctx, "caller-1"), "attempt %d should be allowed", i)
	}
	assert.False(t, limiter.CheckAndCount(ctx, "caller-1"), "attempt 6 should be throttled")
	assert.False(t, limiter.CheckAndCount(ctx, "caller-1"), "throttled attempts still count")
	assert.Equal(t, int64(7), count)
}

func TestCheckAndCount_FailsOpenOnStoreError(t *testing.T) {
	store := &mockCounterStore{
		incrementFunc: func(ctx context.Context, identity string, window time.Duration) (int64, error) {
			return 0, errors.New("connection refused")
		},
	}
	limiter := NewFixedWindowLimiter(store, 5, time.Minute)

	assert.True(t, limiter.CheckAndCount(context.Background(), "caller-1"))
}

func TestMemoryCounterStore_WindowLapse(t *testing.T) {
	store := NewMemoryCounterStore()
	current := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }

	limiter := NewFixedWindowLimiter(store, 5, time.Minute)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		assert.True(t, limiter.CheckAndCount(ctx, "caller-1"), "attempt %d", i)
	}
	assert.False(t, limiter.CheckAndCount(ctx, "caller-1"))

	// After the window lapses the counter vanishes and a fresh window starts.
	current = current.Add(61 * time.Second)
	assert.True(t, limiter.CheckAndCount(ctx, "caller-1"))
}

func TestMemoryCounterStore_IdentitiesAreIndependent(t *testing.T) {
	store := NewMemoryCounterStore()
	limiter := NewFixedWindowLimiter(store, 1, time.Minute)
	ctx := context.Background()

	assert.True(t, limiter.CheckAndCount(ctx, "caller-1"))
	assert.False(t, limiter.CheckAndCount(ctx, "caller-1"))
	assert.True(t, limiter.CheckAndCount(ctx, "caller-2"))
}

func TestMemoryCounterStore_ConcurrentIncrements(t *testing.T) {
	store := NewMemoryCounterStore()
	ctx := context.Background()

	const attempts = 50
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := store.Increment(ctx, "caller-1", time.Minute)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	count, err := store.Increment(ctx, "caller-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(attempts+1), count)
}
