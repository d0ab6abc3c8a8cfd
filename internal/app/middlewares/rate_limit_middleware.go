package middlewares

import (
	"github.com/gofiber/fiber/v2"
	"github.com/morningrun/perkpass-core/pkg/ratelimit"
)

// RateLimitMiddleware wires the redis-backed limiter into the router.
type RateLimitMiddleware struct {
	limiter ratelimit.RateLimiter
}

func NewRateLimitMiddleware(limiter ratelimit.RateLimiter) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter}
}

// LimitByIP limits unauthenticated traffic per client address.
func (m *RateLimitMiddleware) LimitByIP(limit ratelimit.Rate) fiber.Handler {
	return ratelimit.Middleware(m.limiter, limit, ratelimit.IPKey)
}

// LimitByUser limits authenticated traffic per user. Requests without
// a resolved user fall through to the IP limit below them.
func (m *RateLimitMiddleware) LimitByUser(limit ratelimit.Rate) fiber.Handler {
	return ratelimit.Middleware(m.limiter, limit, ratelimit.LocalsKey("user_id"))
}
