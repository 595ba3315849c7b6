package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a Redis-backed sliding-window limiter shared across
// service instances.
type RedisLimiter struct {
	client    redis.Cmdable
	keyPrefix string
	rate      int
	window    time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// RedisConfig holds Redis limiter configuration.
type RedisConfig struct {
	// Client is the Redis client to use.
	Client redis.Cmdable

	// KeyPrefix namespaces the limiter's keys. Defaults to
	// "restroo:ratelimit:".
	KeyPrefix string

	// Rate is the number of requests allowed per window.
	Rate int

	// Window is the time window for the rate limit.
	Window time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter.
func NewRedisLimiter(cfg *RedisConfig) *RedisLimiter {
	keyPrefix := cfg.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "restroo:ratelimit:"
	}
	return &RedisLimiter{
		client:    cfg.Client,
		keyPrefix: keyPrefix,
		rate:      cfg.Rate,
		window:    cfg.Window,
	}
}

// slidingWindowScript trims, counts, and records in one atomic step.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local now = tonumber(ARGV[2])
	local rate = tonumber(ARGV[3])
	local window_ms = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)

	local count = redis.call('ZCARD', key)
	if count + 1 > rate then
		return 0
	end

	redis.call('ZADD', key, now, member)
	redis.call('PEXPIRE', key, window_ms)

	return 1
`)

// member builds a ZSET member that stays unique when requests land in
// the same microsecond; the timestamp alone would collapse them into
// one entry and undercount.
func member(nowMicro int64) string {
	return strconv.FormatInt(nowMicro, 10) + ":" + uuid.NewString()
}

// Allow reports whether one request is allowed for the key.
func (r *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	now := time.Now()
	result, err := slidingWindowScript.Run(ctx, r.client,
		[]string{r.keyPrefix + key},
		now.Add(-r.window).UnixMicro(),
		now.UnixMicro(),
		r.rate,
		r.window.Milliseconds(),
		member(now.UnixMicro()),
	).Int()
	if err != nil {
		return false, fmt.Errorf("ratelimit: redis script failed: %w", err)
	}
	return result == 1, nil
}

// Reset clears the counter for the key.
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.keyPrefix+key).Err()
}

// Close is a no-op; the Redis client is managed by the caller.
func (r *RedisLimiter) Close() error {
	return nil
}
