package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) (*RedisSessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	store, err := NewRedisSessionStore(&RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func TestRedisSessionStore_SetGetDelete(t *testing.T) {
	store, _ := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "txn-1", `{"transaction_id":"txn-1"}`, 0))

	exists, err := store.Exists(ctx, "txn-1")
	require.NoError(t, err)
	assert.True(t, exists)

	value, found, err := store.Get(ctx, "txn-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"transaction_id":"txn-1"}`, value)

	require.NoError(t, store.Delete(ctx, "txn-1"))

	_, found, err = store.Get(ctx, "txn-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSessionStore_MissingKey(t *testing.T) {
	store, _ := newTestRedisStore(t)

	exists, err := store.Exists(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, exists)

	value, found, err := store.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestRedisSessionStore_TTL(t *testing.T) {
	store, mr := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "v", 5*time.Second))
	assert.Equal(t, 5*time.Second, mr.TTL("short"))

	mr.FastForward(6 * time.Second)

	_, found, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisSessionStore_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	store := NewRedisSessionStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer store.Close()
	mr.Close()

	_, _, err := store.Get(context.Background(), "txn-1")
	assert.Error(t, err)
}

func TestNewRedisSessionStore_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	store, err := NewRedisSessionStore(&RedisConfig{Addr: addr})
	assert.Nil(t, store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping failed")
}

func TestProbe(t *testing.T) {
	store, mr := newTestRedisStore(t)

	require.NoError(t, Probe(context.Background(), store, "__health_check__", 5*time.Second))
	assert.False(t, mr.Exists("__health_check__"))

	mr.Close()
	err := Probe(context.Background(), store, "__health_check__", 5*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set probe key")
}
