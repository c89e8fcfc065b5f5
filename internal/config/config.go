package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration loaded from environment variables.
// Every field has a sensible default so a bare checkout works against a local Redis.
type Config struct {
	// Store
	RedisHost        string
	RedisPort        int
	RedisPassword    string
	RedisDB          int
	KeyPrefix        string
	ClaimTTL         time.Duration
	DialTimeout      time.Duration
	MaxRetries       int
	MinRetryBackoff  time.Duration
	MaxRetryBackoff  time.Duration
	OperationTimeout time.Duration

	// Backend identity API
	APIBaseURL string
	APITimeout time.Duration

	// Provisioning: requests per second and parallel calls while seeding
	ProvisionRateLimit   int
	ProvisionConcurrency int

	// Seeding targets per pool
	Seeds []SeedTarget

	// Maintenance
	StatusHTTPPort  string
	CleanupInterval time.Duration
	ShutdownTimeout time.Duration
}

// SeedTarget is how many items the seeder keeps in a pool. Pools holding
// at least Min items are skipped unless seeding is forced.
type SeedTarget struct {
	Pool   string
	Target int
	Min    int
}

// Load reads a .env file from the working directory when present, then
// builds the Config from the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		RedisHost:        getEnv("REDIS_HOST", "localhost"),
		RedisPort:        getInt("REDIS_PORT", 6379),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		RedisDB:          getInt("REDIS_DB", 0),
		KeyPrefix:        getEnv("POOL_KEY_PREFIX", "testdata"),
		ClaimTTL:         getDuration("POOL_CLAIM_TTL", 300*time.Second),
		DialTimeout:      getDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
		MaxRetries:       getInt("REDIS_MAX_RETRIES", 3),
		MinRetryBackoff:  getDuration("REDIS_MIN_RETRY_BACKOFF", 100*time.Millisecond),
		MaxRetryBackoff:  getDuration("REDIS_MAX_RETRY_BACKOFF", time.Second),
		OperationTimeout: getDuration("REDIS_OPERATION_TIMEOUT", 3*time.Second),

		APIBaseURL: getEnv("API_BASE_URL", "https://automationexercise.com/api"),
		APITimeout: getDuration("API_TIMEOUT", 15*time.Second),

		ProvisionRateLimit:   getInt("PROVISION_RATE_LIMIT", 5),
		ProvisionConcurrency: getInt("PROVISION_CONCURRENCY", 4),

		Seeds: []SeedTarget{
			{
				Pool:   "users:fresh",
				Target: getInt("SEED_FRESH_TARGET", 20),
				Min:    getInt("SEED_FRESH_MIN", 20),
			},
			{
				Pool:   "users:registered",
				Target: getInt("SEED_REGISTERED_TARGET", 10),
				Min:    getInt("SEED_REGISTERED_MIN", 10),
			},
		},

		StatusHTTPPort:  getEnv("STATUS_HTTP_PORT", "9090"),
		CleanupInterval: getDuration("CLEANUP_INTERVAL", time.Minute),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the pool protocol cannot work with.
func (c *Config) Validate() error {
	if c.KeyPrefix == "" {
		return fmt.Errorf("POOL_KEY_PREFIX must not be empty")
	}
	if c.ClaimTTL < time.Second {
		return fmt.Errorf("POOL_CLAIM_TTL must be at least 1s, got %s", c.ClaimTTL)
	}
	if c.ProvisionRateLimit <= 0 || c.ProvisionConcurrency <= 0 {
		return fmt.Errorf("provisioning rate limit and concurrency must be positive")
	}
	for _, s := range c.Seeds {
		if s.Target < 0 || s.Min < 0 {
			return fmt.Errorf("seed target for %s must not be negative", s.Pool)
		}
		if s.Min > s.Target {
			return fmt.Errorf("seed minimum for %s (%d) exceeds its target (%d)", s.Pool, s.Min, s.Target)
		}
	}
	return nil
}

// RedisAddr is the host:port the store client dials.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.RedisHost, strconv.Itoa(c.RedisPort))
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
