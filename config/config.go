// Package config loads process settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every tunable of the server.
type Config struct {
	// Port is the HTTP listen port.
	Port string

	// DatabasePath is the SQLite file path (":memory:" for an ephemeral store).
	DatabasePath string

	// JWTSecretKey signs access tokens.
	JWTSecretKey string

	// JWTIssuer is written to the iss claim.
	JWTIssuer string

	// AccessTokenTTL is how long an access token stays valid.
	AccessTokenTTL time.Duration

	// BcryptCost is the password hashing cost.
	BcryptCost int

	// RedisAddr enables rate limiting when non-empty.
	RedisAddr string

	// RedisPassword is the Redis authentication password (optional).
	RedisPassword string

	// RateLimit is the number of mutating requests a user may make per window.
	RateLimit int

	// RateLimitWindow is the sliding window length.
	RateLimitWindow time.Duration

	// CORSOrigins is a comma separated allow list.
	CORSOrigins string

	// PresenceQueueSize bounds each connection's outbound event queue.
	PresenceQueueSize int
}

// Default returns a config with development defaults.
func Default() Config {
	return Config{
		Port:              "3000",
		DatabasePath:      "task_manager.db",
		JWTSecretKey:      "change-me-in-production",
		JWTIssuer:         "collaborative-task-manager",
		AccessTokenTTL:    7 * 24 * time.Hour,
		BcryptCost:        12,
		RateLimit:         100,
		RateLimitWindow:   15 * time.Minute,
		CORSOrigins:       "http://localhost:3000",
		PresenceQueueSize: 64,
	}
}

// Option modifies a Config.
type Option func(*Config)

func WithPort(port string) Option {
	return func(c *Config) { c.Port = port }
}

func WithDatabasePath(path string) Option {
	return func(c *Config) { c.DatabasePath = path }
}

func WithJWTSecret(secret string) Option {
	return func(c *Config) { c.JWTSecretKey = secret }
}

func WithRedis(addr, password string) Option {
	return func(c *Config) {
		c.RedisAddr = addr
		c.RedisPassword = password
	}
}

func WithRateLimit(limit int, window time.Duration) Option {
	return func(c *Config) {
		c.RateLimit = limit
		c.RateLimitWindow = window
	}
}

// Load reads the environment on top of the defaults, then applies opts.
func Load(opts ...Option) Config {
	c := Default()

	c.Port = getEnv("PORT", c.Port)
	c.DatabasePath = getEnv("DATABASE_PATH", c.DatabasePath)
	c.JWTSecretKey = getEnv("JWT_SECRET_KEY", c.JWTSecretKey)
	c.JWTIssuer = getEnv("JWT_ISSUER", c.JWTIssuer)
	c.AccessTokenTTL = getDuration("JWT_ACCESS_TTL", c.AccessTokenTTL)
	c.BcryptCost = getInt("BCRYPT_COST", c.BcryptCost)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RateLimit = getInt("RATE_LIMIT", c.RateLimit)
	c.RateLimitWindow = getDuration("RATE_LIMIT_WINDOW", c.RateLimitWindow)
	c.CORSOrigins = getEnv("CORS_ORIGINS", c.CORSOrigins)
	c.PresenceQueueSize = getInt("PRESENCE_QUEUE_SIZE", c.PresenceQueueSize)

	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Origins splits CORSOrigins into a trimmed list.
func (c Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// RateLimitEnabled reports whether a Redis backend was configured.
func (c Config) RateLimitEnabled() bool {
	return c.RedisAddr != "" && c.RateLimit > 0
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
