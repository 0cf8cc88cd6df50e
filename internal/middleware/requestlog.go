// Package middleware holds Fiber middleware for request logging and rate limiting.
package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// RequestLogger logs every request once it completes and sets X-Response-Time
func RequestLogger(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		// Process the request
		chainErr := c.Next()

		// Render errors now so the logged status is the one sent
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		latency := time.Since(start)
		c.Set("X-Response-Time", strconv.FormatInt(latency.Milliseconds(), 10)+"ms")

		status := c.Response().StatusCode()

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("ip", c.IP()),
		}
		if id, ok := c.Locals("requestid").(string); ok && id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if hit, ok := c.Locals("cache_hit").(bool); ok {
			fields = append(fields, zap.Bool("cache_hit", hit))
		}

		switch {
		case status >= 500:
			logger.Error("request", append(fields, zap.Error(chainErr))...)
		case status >= 400:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}

		return nil
	}
}
