package redis

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKey(t *testing.T) {
	k := idempotencyKey(42, "client-retry-1")

	assert.True(t, strings.HasPrefix(k, "idem:42:"))
	assert.Len(t, strings.TrimPrefix(k, "idem:42:"), 64)
	assert.Equal(t, k, idempotencyKey(42, "client-retry-1"))
	assert.NotEqual(t, k, idempotencyKey(43, "client-retry-1"), "keys are scoped per user")
	assert.NotEqual(t, k, idempotencyKey(42, "client-retry-2"))
}

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client), mr
}

func TestIdempotencyStore_LookupMiss(t *testing.T) {
	store, _ := newTestStore(t)

	id, found, err := store.Lookup(context.Background(), 7, "never-used")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, id)
}

func TestIdempotencyStore_RememberThenLookup(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, 7, "k-1", 99, time.Hour))

	id, found, err := store.Lookup(ctx, 7, "k-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.EqualValues(t, 99, id)
	assert.Equal(t, time.Hour, mr.TTL(idempotencyKey(7, "k-1")))

	_, found, err = store.Lookup(ctx, 8, "k-1")
	require.NoError(t, err)
	assert.False(t, found, "another user's key does not match")
}

func TestIdempotencyStore_FirstWriterWins(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, 7, "k-1", 99, time.Hour))
	require.NoError(t, store.Remember(ctx, 7, "k-1", 100, time.Hour))

	id, _, err := store.Lookup(ctx, 7, "k-1")
	require.NoError(t, err)
	assert.EqualValues(t, 99, id)
}

func TestIdempotencyStore_Expires(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Remember(ctx, 7, "k-1", 99, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, found, err := store.Lookup(ctx, 7, "k-1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotencyStore_CorruptValue(t *testing.T) {
	store, mr := newTestStore(t)
	require.NoError(t, mr.Set(idempotencyKey(7, "k-1"), "not-a-number"))

	_, found, err := store.Lookup(context.Background(), 7, "k-1")
	require.Error(t, err)
	assert.False(t, found)
	assert.Contains(t, err.Error(), "corrupt value")
}

func TestIdempotencyStore_ServerDown(t *testing.T) {
	store, mr := newTestStore(t)
	mr.Close()

	_, _, err := store.Lookup(context.Background(), 7, "k-1")
	assert.Error(t, err)
	assert.Error(t, store.Remember(context.Background(), 7, "k-1", 1, time.Hour))
}

func TestPing(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Connect(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	check := Ping(client)
	assert.NoError(t, check(context.Background()))
	mr.Close()
	assert.Error(t, check(context.Background()))
}
