package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportPayload struct {
	TotalClients  int    `json:"total_clients"`
	TotalProducts int    `json:"total_products"`
	Label         string `json:"label"`
}

func newTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client), mr
}

func TestRedisGetMissThenHit(t *testing.T) {
	cache, _ := newTestRedis(t)
	ctx := context.Background()

	var out reportPayload
	hit, err := cache.Get(ctx, "report:dashboard:overview", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	in := reportPayload{TotalClients: 4, TotalProducts: 12, Label: "overview"}
	require.NoError(t, cache.Set(ctx, "report:dashboard:overview", in, time.Minute))

	hit, err = cache.Get(ctx, "report:dashboard:overview", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, in, out)
}

func TestRedisSetAppliesTTL(t *testing.T) {
	cache, mr := newTestRedis(t)
	ctx := context.Background()

	in := reportPayload{Label: "expiring"}
	require.NoError(t, cache.Set(ctx, "report:inventory:overview", in, 30*time.Second))

	// miniredis only expires keys when the clock is advanced manually
	mr.FastForward(31 * time.Second)

	var out reportPayload
	hit, err := cache.Get(ctx, "report:inventory:overview", &out)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestRedisInvalidatePattern(t *testing.T) {
	cache, _ := newTestRedis(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "report:dashboard:overview", reportPayload{Label: "a"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "report:sales:recent", reportPayload{Label: "b"}, time.Minute))
	require.NoError(t, cache.Set(ctx, "rate_limit:posting:1.2.3.4", reportPayload{Label: "c"}, time.Minute))

	require.NoError(t, cache.InvalidatePattern(ctx, "report:*"))

	var out reportPayload
	hit, err := cache.Get(ctx, "report:dashboard:overview", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = cache.Get(ctx, "report:sales:recent", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	// Keys outside the pattern survive
	hit, err = cache.Get(ctx, "rate_limit:posting:1.2.3.4", &out)
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestRedisInvalidatePatternNoMatches(t *testing.T) {
	cache, _ := newTestRedis(t)

	assert.NoError(t, cache.InvalidatePattern(context.Background(), "report:*"))
}

func TestNoopAlwaysMisses(t *testing.T) {
	var cache Cache = &Noop{}
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "report:anything", reportPayload{Label: "x"}, time.Minute))

	var out reportPayload
	hit, err := cache.Get(ctx, "report:anything", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	assert.NoError(t, cache.InvalidatePattern(ctx, "report:*"))
}
