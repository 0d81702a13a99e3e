package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteSessionStore {
	t.Helper()
	store, err := NewSQLiteSessionStore(filepath.Join(t.TempDir(), "db", "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteSessionStore_SetGetDelete(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "txn-1", `{"consent_handler":"H1"}`, 0))

	exists, err := store.Exists(ctx, "txn-1")
	require.NoError(t, err)
	assert.True(t, exists)

	value, found, err := store.Get(ctx, "txn-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"consent_handler":"H1"}`, value)

	require.NoError(t, store.Delete(ctx, "txn-1"))

	exists, err = store.Exists(ctx, "txn-1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLiteSessionStore_Upsert(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "one", 0))
	require.NoError(t, store.Set(ctx, "k", "two", time.Hour))

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "two", value)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteSessionStore_ExpiryAndCleanup(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "short", "v", 10*time.Millisecond))
	require.NoError(t, store.Set(ctx, "forever", "v", 0))
	time.Sleep(50 * time.Millisecond)

	_, found, err := store.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)

	removed, err := store.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSQLiteSessionStore_Probe(t *testing.T) {
	store := newTestSQLiteStore(t)
	require.NoError(t, Probe(context.Background(), store, "__health_check__", 5*time.Second))

	exists, err := store.Exists(context.Background(), "__health_check__")
	require.NoError(t, err)
	assert.False(t, exists)
}
