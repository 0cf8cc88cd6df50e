package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/welcometomycity/citycore/internal/cache"
	"go.uber.org/zap"
)

// RateLimit allows limit requests per client IP in each fixed window.
// A limit of zero disables the check. Counter failures let the request through.
func RateLimit(c cache.Cache, scope string, limit int, window time.Duration, logger *zap.Logger) fiber.Handler {
	if window <= 0 {
		window = time.Minute
	}

	return func(ctx *fiber.Ctx) error {
		if limit <= 0 || c == nil {
			return ctx.Next()
		}

		now := time.Now()
		windowStart := now.Truncate(window)
		resetAt := windowStart.Add(window)
		key := cache.RateLimitKey(scope, ctx.IP(), windowStart.Unix())

		count, err := c.Incr(context.Background(), key, window)
		if err != nil {
			logger.Warn("rate limit counter unavailable", zap.String("key", key), zap.Error(err))
			return ctx.Next()
		}

		ctx.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		ctx.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if count > int64(limit) {
			retryAfter := int64(resetAt.Sub(now).Seconds()) + 1

			ctx.Set("X-RateLimit-Remaining", "0")
			ctx.Set("Retry-After", strconv.FormatInt(retryAfter, 10))

			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "rate_limit_exceeded",
				"message":     "Too many requests, please try again later",
				"limit":       limit,
				"retry_after": retryAfter,
			})
		}

		ctx.Set("X-RateLimit-Remaining", strconv.FormatInt(int64(limit)-count, 10))
		return ctx.Next()
	}
}
