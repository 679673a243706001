package main

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_DisabledWithoutClient(t *testing.T) {
	ctx := context.Background()
	c := newCache(nil, newLogger("error", "test", io.Discard))

	assert.False(t, c.enabled())
	c.set(ctx, cacheKeyBudget, BudgetOverviewResponse{TotalBudget: 10}, time.Minute)

	var overview BudgetOverviewResponse
	assert.False(t, c.get(ctx, cacheKeyBudget, &overview))
	assert.Zero(t, overview.TotalBudget)

	c.invalidate(ctx)
	assert.NoError(t, c.close())
}

func TestCache_NilReceiver(t *testing.T) {
	var c *cache
	var dst []Transaction

	assert.False(t, c.get(context.Background(), cacheKeyTransactions, &dst))
	c.invalidate(context.Background())
	assert.NoError(t, c.close())
}

func TestInitRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	client, err := initRedis(ctx, "127.0.0.1:1")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestRedisAddrURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"redis:6379", "redis://redis:6379"},
		{"localhost:6379", "redis://localhost:6379"},
		{"redis://cache:6379/1", "redis://cache:6379/1"},
		{"rediss://user:pw@cache:6380", "rediss://user:pw@cache:6380"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, redisAddrURL(tt.in))
		})
	}
}

func TestInitRedis_AcceptsFullURL(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := initRedis(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	defer client.Close()
	assert.Equal(t, mr.Addr(), client.Options().Addr)
}
