package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// RateLimit bounds total inbound request volume per source address. It is a
// coarse global backstop, not part of the auth state machine: counts live in
// Redis so they survive restarts and are shared across replicas.
func RateLimit(cache *redis.Client, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 200
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}

		key := "rl:ip:" + c.IP()
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, window)
		}
		if cnt > int64(max) {
			return fiber.NewError(http.StatusTooManyRequests,
				"Too many requests from this IP, please try again later.")
		}
		return c.Next()
	}
}
