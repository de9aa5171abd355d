package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TokenBucket rate-limits an action per subject. The service uses it to
// throttle login attempts per client IP.
type TokenBucket struct {
	redis    *redis.Client
	capacity int64         // Maximum number of tokens
	refill   int64         // Number of tokens to refill per minute
	window   time.Duration // Time window for refilling (1 minute)
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(redisClient *redis.Client, capacity, refillRate int64) *TokenBucket {
	return &TokenBucket{
		redis:    redisClient,
		capacity: capacity,
		refill:   refillRate,
		window:   time.Minute,
	}
}

// Lua script for atomic token bucket operations. consume controls
// whether a token is taken or the count is merely reported.
const bucketScript = `
	local key = KEYS[1]
	local capacity = tonumber(ARGV[1])
	local refill_rate = tonumber(ARGV[2])
	local window = tonumber(ARGV[3])
	local now = tonumber(ARGV[4])
	local consume = tonumber(ARGV[5])

	local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
	local tokens = tonumber(bucket[1]) or capacity
	local last_refill = tonumber(bucket[2]) or now

	local time_passed = now - last_refill
	local tokens_to_add = math.floor((time_passed / window) * refill_rate)

	if tokens_to_add > 0 then
		tokens = math.min(capacity, tokens + tokens_to_add)
		last_refill = now
	end

	if consume == 0 then
		return tokens
	end

	local allowed = 0
	if tokens > 0 then
		tokens = tokens - 1
		allowed = 1
	end

	redis.call('HMSET', key, 'tokens', tokens, 'last_refill', last_refill)
	redis.call('EXPIRE', key, window * 2)
	return allowed
`

func (tb *TokenBucket) eval(ctx context.Context, subject, action string, consume int) (int64, error) {
	key := fmt.Sprintf("rate_limit:%s:%s", subject, action)
	now := time.Now().Unix()

	result, err := tb.redis.Eval(ctx, bucketScript, []string{key},
		tb.capacity, tb.refill, int64(tb.window.Seconds()), now, consume).Result()
	if err != nil {
		return 0, fmt.Errorf("rate limit script failed: %w", err)
	}

	value, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected result type from rate limit script")
	}

	return value, nil
}

// Allow consumes one token for the subject's action. Returns true if
// the action is allowed, false if the bucket is empty.
func (tb *TokenBucket) Allow(ctx context.Context, subject, action string) (bool, error) {
	allowed, err := tb.eval(ctx, subject, action, 1)
	if err != nil {
		return false, err
	}
	return allowed == 1, nil
}

// GetRemaining returns the number of remaining tokens for a subject's action.
func (tb *TokenBucket) GetRemaining(ctx context.Context, subject, action string) (int64, error) {
	return tb.eval(ctx, subject, action, 0)
}

// Reset clears the rate limit for a specific subject's action.
func (tb *TokenBucket) Reset(ctx context.Context, subject, action string) error {
	key := fmt.Sprintf("rate_limit:%s:%s", subject, action)
	return tb.redis.Del(ctx, key).Err()
}
