package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stocklens/backend/internal/domain"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	cache := NewMemoryCache()
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		key     string
		value   []byte
		ttl     time.Duration
		expires bool
	}{
		{
			name:  "store and retrieve zipcode",
			key:   "session:abc:zipcode--v0",
			value: []byte("60614"),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store and retrieve json",
			key:   "stock:target:123:60614",
			value: []byte(`{"locations":[],"items":[]}`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store without expiry",
			key:   "persisted-search--target--v0",
			value: []byte(`{"recent":[],"searches":{}}`),
			ttl:   0,
		},
		{
			name:    "store with short TTL",
			key:     "expires-soon",
			value:   []byte("x"),
			ttl:     1 * time.Millisecond,
			expires: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			if tt.expires {
				time.Sleep(10 * time.Millisecond)
				_, err := cache.Get(ctx, tt.key)
				if err != domain.ErrCacheMiss {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	value := []byte("60614")
	require.NoError(t, cache.Set(ctx, "k", value, time.Minute))
	value[0] = '9'

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "60614", string(got))

	got[0] = '1'
	again, _ := cache.Get(ctx, "k")
	assert.Equal(t, "60614", string(again))
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)

	_, err := cache.Get(context.Background(), "non-existent-key")
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	key := "delete-test"
	require.NoError(t, cache.Set(ctx, key, []byte("value"), time.Minute))

	_, err := cache.Get(ctx, key)
	require.NoError(t, err)

	assert.NoError(t, cache.Delete(ctx, key))

	_, err = cache.Get(ctx, key)
	if err != domain.ErrCacheMiss {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "exists-test")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cache.Set(ctx, "exists-test", []byte("value"), time.Minute))
	exists, err = cache.Exists(ctx, "exists-test")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, cache.Set(ctx, "short-ttl", []byte("value"), time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	exists, err = cache.Exists(ctx, "short-ttl")
	require.NoError(t, err)
	assert.False(t, exists, "expired key should not exist")
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "stale", []byte("a"), time.Millisecond))
	require.NoError(t, cache.Set(ctx, "fresh", []byte("b"), time.Hour))
	require.NoError(t, cache.Set(ctx, "forever", []byte("c"), 0))

	cache.removeExpired(time.Now().Add(time.Minute))

	assert.Equal(t, 2, cache.Size())
	_, err := cache.Get(ctx, "forever")
	assert.NoError(t, err)
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		key := string(rune('a' + i))
		require.NoError(t, cache.Set(ctx, key, []byte{byte(i)}, time.Minute))
	}
	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	require.NoError(t, cache.Delete(ctx, "a"))
	if size := cache.Size(); size != 4 {
		t.Errorf("Size() = %d, want 4 after delete", size)
	}

	cache.Clear()
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, []byte(key), time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Size())
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "session:abc:zipcode--v0", []byte("55401"), 0))

	assert.NoError(t, cache.Close())
	assert.NoError(t, cache.Close())
	assert.Equal(t, 0, cache.Size())
}

func TestMemoryBlobStore(t *testing.T) {
	store := NewMemoryBlobStore(newTestCache(t))
	ctx := context.Background()

	_, err := store.Get(ctx, "persisted-search--walmart--v0")
	assert.ErrorIs(t, err, domain.ErrBlobNotFound)

	require.NoError(t, store.Put(ctx, "persisted-search--walmart--v0", []byte(`{"recent":[]}`)))
	got, err := store.Get(ctx, "persisted-search--walmart--v0")
	require.NoError(t, err)
	assert.JSONEq(t, `{"recent":[]}`, string(got))
}
