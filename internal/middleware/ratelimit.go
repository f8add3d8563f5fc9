package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/forvaidya/icomment/internal/ratelimit"
)

// RateLimit throttles the route with the limiter's matrix cell for the
// caller's class and the given action. Authenticated callers are counted
// per user id, anonymous callers per client IP. Every response carries the
// usual X-RateLimit headers; denials answer 429 with Retry-After.
func RateLimit(limiter *ratelimit.Limiter, action ratelimit.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity := "ip:" + c.IP()
		authenticated := false
		if u := GetCurrentUser(c); u != nil {
			identity = "user:" + u.ID.String()
			authenticated = true
		}

		result := limiter.Check(c.Context(), identity, action, authenticated)

		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(time.Until(result.ResetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return fiber.NewError(fiber.StatusTooManyRequests, "Rate limit exceeded")
		}

		return c.Next()
	}
}
