package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration

	// Shopify
	ShopifyAPIVersion     string
	ShopifyHTTPTimeout    time.Duration
	ShopifyFallbackDomain string
	ShopifyFallbackToken  string
	SyncPageLimit         int

	// Cache
	CacheDir        string
	CacheLocalMax   int
	CacheLocalTTL   time.Duration
	CacheSharedTTL  time.Duration

	// SMTP (optional)
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string

	// HTTP limits
	RateLimitRequests int
	RateLimitWindow   time.Duration
	MaxRequestBody    int64
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "shoplens"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults
		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTIssuer:  getEnv("JWT_ISSUER", "shoplens"),
		SessionTTL: getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		// Shopify defaults
		ShopifyAPIVersion:     getEnv("SHOPIFY_API_VERSION", "2024-01"),
		ShopifyHTTPTimeout:    getEnvDuration("SHOPIFY_HTTP_TIMEOUT", 25*time.Second),
		ShopifyFallbackDomain: getEnv("SHOPIFY_FALLBACK_DOMAIN", ""),
		ShopifyFallbackToken:  getEnv("SHOPIFY_FALLBACK_TOKEN", ""),
		SyncPageLimit:         getEnvInt("SYNC_PAGE_LIMIT", 250),

		// Cache defaults; empty CACHE_DIR keeps the shared tier in memory
		CacheDir:       getEnv("CACHE_DIR", ""),
		CacheLocalMax:  getEnvInt("CACHE_LOCAL_MAX", 1000),
		CacheLocalTTL:  getEnvDuration("CACHE_LOCAL_TTL", 5*time.Minute),
		CacheSharedTTL: getEnvDuration("CACHE_SHARED_TTL", 5*time.Minute),

		// SMTP (optional)
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "ShopLens"),

		// HTTP limits
		RateLimitRequests: getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		MaxRequestBody:    int64(getEnvInt("MAX_REQUEST_BODY", 10<<20)),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// HasSMTP returns true if outbound email is configured.
func (c *Config) HasSMTP() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// HasFallbackStore returns true if a process-wide fallback store is
// configured for tenants without their own credentials.
func (c *Config) HasFallbackStore() bool {
	return c.ShopifyFallbackDomain != "" && c.ShopifyFallbackToken != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
