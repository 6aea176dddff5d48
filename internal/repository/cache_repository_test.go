package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/fitcoach-api/pkg/errors"
)

func newCacheRepo(t *testing.T) (*CacheRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCacheRepository(client, nil), mr
}

type cachedSummary struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

func TestCacheRepositoryRoundTrip(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "dash:coach:1", cachedSummary{Total: 3, Label: "x"}, time.Minute))
	assert.True(t, mr.Exists("dash:coach:1"))

	var got cachedSummary
	require.NoError(t, repo.Get(ctx, "dash:coach:1", &got))
	assert.Equal(t, 3, got.Total)

	mr.FastForward(2 * time.Minute)
	assert.ErrorIs(t, repo.Get(ctx, "dash:coach:1", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryCorruptEntryIsMiss(t *testing.T) {
	repo, mr := newCacheRepo(t)
	require.NoError(t, mr.Set("dash:coach:1", "{not json"))

	var got cachedSummary
	assert.ErrorIs(t, repo.Get(context.Background(), "dash:coach:1", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	repo, mr := newCacheRepo(t)
	ctx := context.Background()

	for _, key := range []string{"dash:coach:1", "dash:coach:2", "other:1"} {
		require.NoError(t, repo.Set(ctx, key, cachedSummary{}, time.Minute))
	}
	require.NoError(t, repo.DeleteByPattern(ctx, "dash:*"))

	assert.False(t, mr.Exists("dash:coach:1"))
	assert.False(t, mr.Exists("dash:coach:2"))
	assert.True(t, mr.Exists("other:1"))
}

func TestCacheRepositoryDisabled(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	assert.False(t, repo.Enabled())
	assert.NoError(t, repo.Set(ctx, "k", 1, time.Minute))
	var v int
	assert.ErrorIs(t, repo.Get(ctx, "k", &v), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.NoError(t, repo.Close())
}
