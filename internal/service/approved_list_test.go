package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestApprovedListRotationRetiresEarlierKeys(t *testing.T) {
	repo := newFakeCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, zap.NewNop(), true)
	list := newApprovedList(cache, "locations:approved", time.Minute, zap.NewNop())
	ctx := context.Background()

	var got []string
	staleKey, hit := list.load(ctx, &got)
	assert.False(t, hit)
	assert.Equal(t, "locations:approved:0", staleKey)

	list.rotate(ctx)
	assert.Equal(t, approvedGenerationTTL, repo.ttls["spot-review:locations:approved:generation"])

	list.store(ctx, staleKey, []string{"stale"})
	freshKey, hit := list.load(ctx, &got)
	assert.False(t, hit)
	assert.NotEqual(t, staleKey, freshKey)

	list.store(ctx, freshKey, []string{"fresh"})
	_, hit = list.load(ctx, &got)
	require.True(t, hit)
	assert.Equal(t, []string{"fresh"}, got)

	list.rotate(ctx)
	nextKey, hit := list.load(ctx, &got)
	assert.False(t, hit)
	assert.NotEqual(t, freshKey, nextKey)
}

func TestApprovedListRotationDropsListsWhenTokenWriteFails(t *testing.T) {
	cache := newMemoryListCache()
	list := newApprovedList(cache, "profiles:approved", time.Minute, zap.NewNop())
	ctx := context.Background()

	cache.entries["profiles:approved:0"] = []string{"stale"}
	failing := &failingSetCache{memoryListCache: cache}
	list.cache = failing

	list.rotate(ctx)
	assert.Equal(t, []string{"profiles:approved:*"}, cache.invalidated)
	assert.NotContains(t, cache.entries, "profiles:approved:0")
}

func TestApprovedListWithoutCache(t *testing.T) {
	list := newApprovedList(nil, "locations:approved", time.Minute, zap.NewNop())
	assert.Nil(t, list)

	key, hit := list.load(context.Background(), new([]string))
	assert.Empty(t, key)
	assert.False(t, hit)
	list.store(context.Background(), key, []string{"a"})
	list.rotate(context.Background())
}

type failingSetCache struct {
	*memoryListCache
}

func (c *failingSetCache) Set(context.Context, string, interface{}, time.Duration) error {
	return errors.New("connection refused")
}
