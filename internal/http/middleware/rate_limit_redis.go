package middleware

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisFixedWindowScript counts a request and returns {count, remaining ttl}.
// INCR plus a first-hit PEXPIRE keeps the whole window in one round trip and
// makes the counter self-expiring.
var redisFixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RedisFixedWindowLimiter shares one fixed window across replicas.
type RedisFixedWindowLimiter struct {
	client *redis.Client
}

func NewRedisFixedWindowLimiter(client *redis.Client) *RedisFixedWindowLimiter {
	return &RedisFixedWindowLimiter{client: client}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, time.Duration, error) {
	res, err := redisFixedWindowScript.Run(ctx, l.client,
		[]string{"ratelimit:" + key},
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return false, 0, err
	}
	count, ttlMillis := res[0], res[1]
	if count <= int64(limit) {
		return true, 0, nil
	}
	retryAfter := time.Duration(ttlMillis) * time.Millisecond
	if retryAfter < 0 {
		retryAfter = window
	}
	return false, retryAfter, nil
}
