package middleware

import (
	"strconv"
	"sync"
	"time"

	"drafly_server/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// RateLimiter counts requests per identity in a fixed window. It guards the
// generation endpoint so one user cannot burn the LLM quota.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
}

type bucket struct {
	count     int
	expiresAt time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 10
	}
	if window <= 0 {
		window = time.Minute
	}
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
	}
	go rl.sweep()
	return rl
}

func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		rl.mu.Lock()
		for key, b := range rl.buckets {
			if now.After(b.expiresAt) {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// Allow reports whether key may proceed, and the seconds until the window
// resets when it may not.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok || now.After(b.expiresAt) {
		rl.buckets[key] = &bucket{count: 1, expiresAt: now.Add(rl.window)}
		return true, 0
	}
	if b.count >= rl.limit {
		return false, int(time.Until(b.expiresAt).Seconds()) + 1
	}
	b.count++
	return true, 0
}

// Handler limits by the session identity, falling back to the client IP
// for unauthenticated paths.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, _ := c.Locals("user_email").(string)
		if key == "" {
			key = c.IP()
		}

		allowed, retryAfter := rl.Allow(key)
		if !allowed {
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return response.Error(c, fiber.StatusTooManyRequests, "RATE_LIMITED", "too many requests, slow down")
		}
		return c.Next()
	}
}
