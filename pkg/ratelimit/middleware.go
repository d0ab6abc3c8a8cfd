package ratelimit

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// KeyFunc generates a rate limit key from a request
type KeyFunc func(*fiber.Ctx) string

// IPKey returns a rate limit key based on the client IP address
func IPKey(c *fiber.Ctx) string {
	return fmt.Sprintf("ip:%s", c.IP())
}

// LocalsKey returns a KeyFunc that reads an identifier stored in the
// request locals (set by an auth middleware). Returns "" when absent,
// which skips limiting for that request.
func LocalsKey(name string) KeyFunc {
	return func(c *fiber.Ctx) string {
		value := c.Locals(name)
		if value == nil {
			return ""
		}
		return fmt.Sprintf("%s:%v", name, value)
	}
}

// Middleware creates a fiber handler enforcing the given rate.
func Middleware(limiter RateLimiter, limit Rate, keyFn KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := keyFn(c)
		if key == "" {
			return c.Next()
		}

		allowed, info := limiter.Allow(key, limit)

		c.Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		c.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		c.Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.Reset.Unix()))

		if !allowed {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded",
				"limit": info.Limit,
				"reset": info.Reset.Unix(),
			})
		}

		return c.Next()
	}
}
