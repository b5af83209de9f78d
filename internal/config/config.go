package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port           string
	Env            string
	LogLevel       string
	BackendBaseURL string
	BackendTimeout time.Duration
	SessionSecret  string
	SessionTTL     time.Duration
	SessionStore   string
	CookieName     string
	RedisAddr      string
	RedisPassword  string
	RedisTLS       bool
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		BackendBaseURL: getEnv("BACKEND_BASE_URL", "http://localhost:8000/api"),
		BackendTimeout: getEnvAsDuration("BACKEND_TIMEOUT", 20*time.Second),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		SessionTTL:     getEnvAsDuration("SESSION_TTL", 8*time.Hour),
		SessionStore:   strings.ToLower(strings.TrimSpace(getEnv("SESSION_STORE", "redis"))),
		CookieName:     getEnv("COOKIE_NAME", "portal_session"),
		RedisAddr:      getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisTLS:       getEnvAsBool("REDIS_TLS", false),
	}
}

// Production reports whether the portal runs in a production environment.
// Session cookies are marked Secure only in production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
