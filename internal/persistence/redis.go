package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sojus/helpdesk/internal/config"
)

// NameCache is the Redis connection that caches directory display names.
type NameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenNameCache connects to Redis. An unreachable server is only logged: name lookups
// fall back to the ticket store until it comes back.
func OpenNameCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) *NameCache {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("unable to reach redis; name cache degraded", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &NameCache{client: client, ttl: cfg.LookupCacheTTL}
}

// Client returns the underlying client.
func (c *NameCache) Client() *redis.Client {
	return c.client
}

// TTL is how long a resolved name stays cached.
func (c *NameCache) TTL() time.Duration {
	return c.ttl
}

func (c *NameCache) Close() {
	if c != nil && c.client != nil {
		_ = c.client.Close()
	}
}

// Ping verifies Redis connectivity for the readiness probe.
func (c *NameCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("redis client not configured")
	}
	return c.client.Ping(ctx).Err()
}
