package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pushp314/agencydesk-backend/internal/config"
	"github.com/pushp314/agencydesk-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// InitRedis connects to Redis when REDIS_ADDR is set. A failed ping leaves
// Redis nil so callers fall back to in-process behaviour.
func InitRedis(cfg *config.Config) *redis.Client {
	if cfg.RedisAddr == "" {
		logger.Info().Msg("Redis not configured, using in-process rate limiting")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Msg("Failed to connect to Redis, rate limiting falls back to in-process")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")
	Redis = client
	return client
}

// RedisLimiter is a fixed-window counter per actor, shared by every process
// pointing at the same Redis.
type RedisLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewRedisLimiter allows limit sends per window. Non-positive values fall back
// to 30 per minute, matching the in-process limiter.
func NewRedisLimiter(client *redis.Client, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 30
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, limit: int64(limit), window: window}
}

// Allow counts one send for actorID. A key left without a TTL (an earlier
// EXPIRE that failed) gets one now, so an actor is never blocked for good.
func (l *RedisLimiter) Allow(ctx context.Context, actorID uint) (bool, error) {
	key := fmt.Sprintf("rate_limit:chat:%d", actorID)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	if _, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		ttl = pipe.TTL(ctx, key)
		return nil
	}); err != nil {
		return false, err
	}

	if ttl.Val() < 0 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return false, err
		}
	}
	return incr.Val() <= l.limit, nil
}
