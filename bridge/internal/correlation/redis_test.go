package correlation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	store, err := NewRedisStore("redis://"+mr.Addr(), time.Hour)
	require.NoError(t, err)
	return mr, store
}

func TestRedisStoreSetGet(t *testing.T) {
	mr, store := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "act_0001", testContext()))

	cc, err := store.Get(ctx, "act_0001")
	require.NoError(t, err)
	require.NotNil(t, cc)
	assert.Equal(t, testContext(), *cc)
}

func TestRedisStoreGetMiss(t *testing.T) {
	mr, store := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	cc, err := store.Get(context.Background(), "act_missing")
	require.NoError(t, err)
	assert.Nil(t, cc)
}

func TestRedisStoreEntriesExpire(t *testing.T) {
	mr, store := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "act_0001", testContext()))

	mr.FastForward(2 * time.Hour)

	cc, err := store.Get(ctx, "act_0001")
	require.NoError(t, err)
	assert.Nil(t, cc, "entries expire after the configured ttl")
}

func TestRedisStoreKeysNamespaced(t *testing.T) {
	mr, store := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	require.NoError(t, store.Set(context.Background(), "act_0001", testContext()))
	assert.True(t, mr.Exists("bridge:correlation:act_0001"))
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore("not-a-url", 0)
	assert.Error(t, err)
}

func TestRedisStoreCorruptEntry(t *testing.T) {
	mr, store := setupTestRedis(t)
	defer mr.Close()
	defer store.Close()

	require.NoError(t, mr.Set("bridge:correlation:act_0001", "{not json"))

	_, err := store.Get(context.Background(), "act_0001")
	assert.Error(t, err)
}
