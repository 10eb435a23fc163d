package middleware

import (
	"fmt"
	"log"
	"sync"
	"time"

	"socios/internal/config"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// limiterIdleCleanup is how often idle per-client limiters are dropped.
const limiterIdleCleanup = 5 * time.Minute

type rateLimiter struct {
	limiters    sync.Map // map[string]*rate.Limiter
	rate        rate.Limit
	burst       int
	mu          sync.Mutex
	lastCleanup time.Time
}

func (rl *rateLimiter) get(key string) *rate.Limiter {
	if limiter, ok := rl.limiters.Load(key); ok {
		return limiter.(*rate.Limiter)
	}
	actual, _ := rl.limiters.LoadOrStore(key, rate.NewLimiter(rl.rate, rl.burst))
	rl.maybeCleanup()
	return actual.(*rate.Limiter)
}

// maybeCleanup drops limiters whose bucket is full again, i.e. clients that went quiet.
func (rl *rateLimiter) maybeCleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if time.Since(rl.lastCleanup) < limiterIdleCleanup {
		return
	}
	rl.lastCleanup = time.Now()

	rl.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(rl.burst) {
			rl.limiters.Delete(key)
		}
		return true
	})
}

// RateLimitByIP allows cfg.Requests per cfg.Window from each client IP, all available as a burst.
// Further requests get 429 with a Retry-After header.
func RateLimitByIP(cfg config.RateConfig) fiber.Handler {
	rl := &rateLimiter{
		rate:        rate.Limit(float64(cfg.Requests) / cfg.Window.Seconds()),
		burst:       cfg.Requests,
		lastCleanup: time.Now(),
	}

	return func(c *fiber.Ctx) error {
		key := c.IP()
		limiter := rl.get(key)
		if limiter.Allow() {
			return c.Next()
		}

		reservation := limiter.Reserve()
		delay := reservation.Delay()
		reservation.Cancel()
		retryAfter := max(int(delay.Seconds()), 1)

		log.Printf("Rate limit exceeded for %s on %s", key, c.Path())
		c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
			"message": "Too many requests. Please try again later.",
		})
	}
}
