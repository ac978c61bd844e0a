// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backend selectors for Config.CacheBackend.
const (
	CacheBackendSQLite = "sqlite"
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	Env            string
	DBPath         string
	AllowedOrigins []string

	CacheBackend   string
	RedisAddr      string
	CacheOpTimeout time.Duration
	CacheTTL       time.Duration // 0 = entries never expire

	LookupTimeout  time.Duration
	PriceAPIURL    string // empty = built-in static price table
	PostcodeAPIURL string

	DepositPercent     float64
	MinStatementMonths int

	SessionTTL  time.Duration
	AuditLogDir string // empty = audit logging disabled
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DBPath:         getEnv("DB_PATH", "./data/deposit.db"),
		AllowedOrigins: splitCSV(getEnv("ALLOWED_ORIGINS", "*")),

		CacheBackend:   strings.ToLower(getEnv("CACHE_BACKEND", CacheBackendSQLite)),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		CacheOpTimeout: getEnvDuration("CACHE_OP_TIMEOUT", 500*time.Millisecond),
		CacheTTL:       getEnvDuration("CACHE_TTL", 0),

		LookupTimeout:  getEnvDuration("LOOKUP_TIMEOUT", 5*time.Second),
		PriceAPIURL:    getEnv("PRICE_API_URL", ""),
		PostcodeAPIURL: getEnv("POSTCODE_API_URL", "https://api.postcodes.io"),

		DepositPercent:     getEnvFloat("DEPOSIT_PERCENT", 10),
		MinStatementMonths: getEnvInt("MIN_STATEMENT_MONTHS", 3),

		SessionTTL:  getEnvDuration("SESSION_TTL", 24*time.Hour),
		AuditLogDir: getEnv("AUDIT_LOG_DIR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are sane.
func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a number in 1-65535, got %q", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	switch c.CacheBackend {
	case CacheBackendSQLite, CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required when CACHE_BACKEND is redis")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be sqlite, redis or memory, got %q", c.CacheBackend)
	}
	if c.CacheOpTimeout <= 0 {
		return fmt.Errorf("CACHE_OP_TIMEOUT must be positive, got %s", c.CacheOpTimeout)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative, got %s", c.CacheTTL)
	}
	if c.LookupTimeout <= 0 {
		return fmt.Errorf("LOOKUP_TIMEOUT must be positive, got %s", c.LookupTimeout)
	}
	if c.DepositPercent <= 0 || c.DepositPercent > 100 {
		return fmt.Errorf("DEPOSIT_PERCENT must be in (0, 100], got %g", c.DepositPercent)
	}
	if c.MinStatementMonths < 1 {
		return fmt.Errorf("MIN_STATEMENT_MONTHS must be >= 1, got %d", c.MinStatementMonths)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env != "production"
}

func splitCSV(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
