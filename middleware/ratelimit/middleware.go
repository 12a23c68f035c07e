package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Allower decides whether one more request for key is allowed.
type Allower interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Config sets the per-caller budget.
type Config struct {
	Limit  int
	Window time.Duration
	// UserKey is the c.Locals key holding the authenticated user id.
	UserKey string
}

// Middleware limits requests per authenticated user, falling back to client IP.
type Middleware struct {
	allower Allower
	config  Config
	logger  types.Logger
	now     func() time.Time
}

// NewMiddleware creates a new rate limiting middleware.
func NewMiddleware(allower Allower, config Config, logger types.Logger) *Middleware {
	if config.UserKey == "" {
		config.UserKey = "user_id"
	}
	return &Middleware{allower: allower, config: config, logger: logger, now: time.Now}
}

// Handler returns the fiber middleware. Limiter errors let the request through.
func (m *Middleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "ip:" + c.IP()
		if userID, ok := c.Locals(m.config.UserKey).(string); ok && userID != "" {
			key = "user:" + userID
		}

		result, err := m.allower.Allow(c.UserContext(), key, m.config.Limit, m.config.Window)
		if err != nil {
			m.logger.Warn("Rate limit check failed, allowing request", "key", key, "error", err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			retryAfter := int(result.RetryAfter(m.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Set("Retry-After", strconv.Itoa(retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": fmt.Sprintf("Too many requests, please try again in %d seconds.", retryAfter),
			})
		}
		return c.Next()
	}
}
