package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/krunal16-c/saskhack/config"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return &Client{rdb: rdb, logger: zap.NewNop()}, mr
}

func TestNewClient_PingSucceeds(t *testing.T) {
	mr := miniredis.RunT(t)

	c, err := NewClient(&config.RedisConfig{Addr: mr.Addr()}, zap.NewNop())
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Ping(context.Background()))
}

func TestNewClient_Unreachable(t *testing.T) {
	_, err := NewClient(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	assert.Error(t, err)
}

func TestCheckRateLimit_BlocksAfterLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, "submit:u1", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "第 %d 次请求应被允许", i+1)
	}

	ok, err := c.CheckRateLimit(ctx, "submit:u1", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "超过限额后应被拒绝")

	// 其他 key 不受影响
	ok, err = c.CheckRateLimit(ctx, "submit:u2", 3, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckRateLimit_ZeroLimitAlwaysAllows(t *testing.T) {
	c, _ := newTestClient(t)

	ok, err := c.CheckRateLimit(context.Background(), "k", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMarkOnce(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	first, err := c.MarkOnce(ctx, "notify:u1:no_form:2026-10-15", time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := c.MarkOnce(ctx, "notify:u1:no_form:2026-10-15", time.Hour)
	require.NoError(t, err)
	assert.False(t, second, "TTL 内重复标记应返回 false")

	mr.FastForward(2 * time.Hour)

	again, err := c.MarkOnce(ctx, "notify:u1:no_form:2026-10-15", time.Hour)
	require.NoError(t, err)
	assert.True(t, again, "TTL 过期后应可再次标记")
}

func TestUnmark(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, err := c.MarkOnce(ctx, "k", time.Hour)
	require.NoError(t, err)
	require.NoError(t, c.Unmark(ctx, "k"))

	ok, err := c.MarkOnce(ctx, "k", time.Hour)
	require.NoError(t, err)
	assert.True(t, ok)
}
