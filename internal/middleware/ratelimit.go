package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/summarizer/api/pkg/response"
)

type RateLimiter struct {
	redis *redis.Client
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient}
}

// Limit creates a rate limiting middleware
func (rl *RateLimiter) Limit(keyPrefix string, maxRequests int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		username := GetUsername(c)
		if username == "" {
			return c.Next() // Skip rate limiting if no user (auth middleware should catch this)
		}

		key := fmt.Sprintf("ratelimit:%s:%s", keyPrefix, username)
		ctx := context.Background()

		// Increment counter
		count, err := rl.redis.Incr(ctx, key).Result()
		if err != nil {
			// If Redis fails, allow the request
			return c.Next()
		}

		// Set expiration on first request
		if count == 1 {
			rl.redis.Expire(ctx, key, window)
		}

		if count > int64(maxRequests) {
			ttl, _ := rl.redis.TTL(ctx, key).Result()
			c.Set("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())))
			return response.RateLimited(c)
		}

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", maxRequests))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", maxRequests-int(count)))

		return c.Next()
	}
}

// SummarizeLimit returns a rate limiter for summarize endpoints
func (rl *RateLimiter) SummarizeLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("summarize", maxPerMin, time.Minute)
}

// AnalyzeLimit returns a rate limiter for multi-document analysis
func (rl *RateLimiter) AnalyzeLimit(maxPerMin int) fiber.Handler {
	return rl.Limit("analyze", maxPerMin, time.Minute)
}

// ConvertLimit returns a rate limiter for audio conversion submissions
func (rl *RateLimiter) ConvertLimit(maxPerHour int) fiber.Handler {
	return rl.Limit("convert", maxPerHour, time.Hour)
}
