package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Cache keys. Every mutation drops all of them.
const (
	cacheKeyTransactions = "transactions"
	cacheKeyAnalytics    = "analytics"
	cacheKeyBudget       = "budget"
	cacheKeyDashboard    = "dashboard"
)

var allCacheKeys = []string{cacheKeyTransactions, cacheKeyAnalytics, cacheKeyBudget, cacheKeyDashboard}

// initRedis initializes the Redis connection
func initRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisAddrURL(redisURL))
	if err != nil {
		// Fallback to simple connection
		opt = &redis.Options{
			Addr: redisURL,
		}
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return client, nil
}

// redisAddrURL accepts both a bare host:port and a full redis:// or
// rediss:// URL.
func redisAddrURL(redisURL string) string {
	if strings.Contains(redisURL, "://") {
		return redisURL
	}
	return "redis://" + redisURL
}

// cache is a JSON read-through cache over Redis. A nil client disables it;
// failures are logged and otherwise ignored.
type cache struct {
	client *redis.Client
	logger *logrus.Logger
}

func newCache(client *redis.Client, logger *logrus.Logger) *cache {
	return &cache{client: client, logger: logger}
}

func (c *cache) enabled() bool {
	return c != nil && c.client != nil
}

// get decodes the value at key into dst and reports whether it was found.
func (c *cache) get(ctx context.Context, key string, dst any) bool {
	if !c.enabled() {
		return false
	}
	cached, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("key", key).Warn("cache read failed")
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dst); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("discarding undecodable cache entry")
		return false
	}
	return true
}

func (c *cache) set(ctx context.Context, key string, value any, ttl time.Duration) {
	if !c.enabled() || ttl <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache encode failed")
		return
	}
	if err := c.client.SetEx(ctx, key, data, ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

// invalidate drops every cached payload derived from the ledger.
func (c *cache) invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.client.Del(ctx, allCacheKeys...).Err(); err != nil {
		c.logger.WithError(err).Warn("cache invalidation failed")
	}
}

func (c *cache) close() error {
	if !c.enabled() {
		return nil
	}
	return c.client.Close()
}
