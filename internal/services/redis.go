package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"coinflip-ladder-backend/internal/config"
)

type RedisService struct {
	client *redis.Client
}

func NewRedisService(ctx context.Context, cfg *config.Config) (*RedisService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisService{client: client}, nil
}

func (s *RedisService) Close() error {
	return s.client.Close()
}

// slidingWindowScript drops entries at or before now-window, then admits the
// request only while fewer than limit remain.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local member = ARGV[4]

	redis.call("ZREMRANGEBYSCORE", key, "-inf", now - window)

	if redis.call("ZCARD", key) >= limit then
		return 0
	end

	redis.call("ZADD", key, now, member)
	redis.call("PEXPIRE", key, window)

	return 1
`)

func (s *RedisService) CheckRateLimit(ctx context.Context, clientID string, limit int, window time.Duration) (bool, error) {
	key := fmt.Sprintf(KeyRateLimit, clientID)

	allowed, err := slidingWindowScript.Run(ctx, s.client, []string{key},
		time.Now().UnixMilli(),
		window.Milliseconds(),
		limit,
		uuid.NewString(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %w", err)
	}

	return allowed == 1, nil
}

func (s *RedisService) ClearRateLimit(ctx context.Context, clientID string) error {
	key := fmt.Sprintf(KeyRateLimit, clientID)
	return s.client.Del(ctx, key).Err()
}

// RedisRateLimiter shares the sliding window across processes.
type RedisRateLimiter struct {
	redis  *RedisService
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(redisService *RedisService, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		redis:  redisService,
		limit:  limit,
		window: window,
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, clientID string) (bool, error) {
	return l.redis.CheckRateLimit(ctx, clientID, l.limit, l.window)
}
