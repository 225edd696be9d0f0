package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_GetSet(t *testing.T) {
	c := NewMemoryCache(10, 1<<20, nil)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "graph:1", []byte("payload"), time.Minute))
	got, found, err := c.Get(ctx, "graph:1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("payload"), got)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 1, stats.Items)
}

func TestMemoryCache_DefensiveCopies(t *testing.T) {
	c := NewMemoryCache(10, 1<<20, nil)
	ctx := context.Background()

	original := []byte("payload")
	require.NoError(t, c.Set(ctx, "k", original, time.Minute))
	original[0] = 'X'

	got, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("payload"), got)

	got[0] = 'Y'
	again, _, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), again)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	c := NewMemoryCache(10, 1<<20, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, found, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, c.Stats().Items)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	c := NewMemoryCache(2, 1<<20, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))

	// Touch "a" so "b" becomes least recently used.
	_, _, err := c.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "c", []byte("3"), time.Minute))

	_, found, _ := c.Get(ctx, "a")
	assert.True(t, found)
	_, found, _ = c.Get(ctx, "b")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "c")
	assert.True(t, found)
	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestMemoryCache_MemoryBoundEviction(t *testing.T) {
	// One byte of key plus nine of value per item; two items fit.
	c := NewMemoryCache(100, 20, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", []byte("123456789"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("123456789"), time.Minute))
	require.NoError(t, c.Set(ctx, "c", []byte("123456789"), time.Minute))

	_, found, _ := c.Get(ctx, "a")
	assert.False(t, found)
	assert.LessOrEqual(t, c.Stats().Size, int64(20))
}

func TestMemoryCache_OversizedItemIgnored(t *testing.T) {
	c := NewMemoryCache(10, 4, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("far too large"), time.Minute))
	_, found, _ := c.Get(ctx, "k")
	assert.False(t, found)
}

func TestMemoryCache_DeleteAndPrefix(t *testing.T) {
	c := NewMemoryCache(10, 1<<20, nil)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "graph:1", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "graph:2", []byte("b"), time.Minute))
	require.NoError(t, c.Set(ctx, "key:1", []byte("c"), time.Minute))

	require.NoError(t, c.Delete(ctx, "graph:1"))
	_, found, _ := c.Get(ctx, "graph:1")
	assert.False(t, found)

	require.NoError(t, c.DeletePrefix(ctx, "graph:"))
	_, found, _ = c.Get(ctx, "graph:2")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "key:1")
	assert.True(t, found)
}
