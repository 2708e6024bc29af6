package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Preference store backends selectable with PREFERENCE_STORE.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Config holds all application configuration
type Config struct {
	Server      ServerConfig
	Backend     BackendConfig
	Preferences PreferencesConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Widget      WidgetConfig
	RateLimit   RateLimitConfig
	Sentry      SentryConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port        string
	Environment string
	ServiceName string
	CORSOrigins string // Comma-separated list of allowed origins
	// LogLevel overrides the environment's default level when set.
	LogLevel string
}

// BackendConfig points at the chat backend that answers questions.
type BackendConfig struct {
	BaseURL string
	// Timeout of zero means the request waits until the backend answers.
	Timeout time.Duration
	// BreakerFailures consecutive unreachable attempts open the circuit
	// breaker; zero disables it.
	BreakerFailures int
	BreakerCooldown time.Duration
}

// PreferencesConfig selects where the language preference is persisted.
type PreferencesConfig struct {
	Store string
	File  string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
}

// WidgetConfig holds settings of the hosted chat page.
type WidgetConfig struct {
	LocalesDir      string
	LangFromBrowser bool
	SessionTTL      time.Duration
}

// RateLimitConfig limits how often one browser profile may submit messages.
type RateLimitConfig struct {
	Enabled       bool
	Limit         int
	Burst         int
	WindowSeconds int
	RedisPrefix   string
}

// Window returns the rate limit window, one minute when unset.
func (c RateLimitConfig) Window() time.Duration {
	if c.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(c.WindowSeconds) * time.Second
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN string
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			ServiceName: serviceName,
			CORSOrigins: getEnv("CORS_ORIGINS", "*"),
			LogLevel:    getEnv("LOG_LEVEL", ""),
		},
		Backend: BackendConfig{
			BaseURL:         strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:5001"), "/"),
			Timeout:         getEnvAsDuration("BACKEND_TIMEOUT", 0),
			BreakerFailures: getEnvAsInt("BACKEND_BREAKER_FAILURES", 5),
			BreakerCooldown: getEnvAsDuration("BACKEND_BREAKER_COOLDOWN", 30*time.Second),
		},
		Preferences: PreferencesConfig{
			Store: strings.ToLower(getEnv("PREFERENCE_STORE", StoreMemory)),
			File:  getEnv("PREFERENCE_FILE", "preferences.json"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "wastechat"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 1),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "wastechat"),
		},
		Widget: WidgetConfig{
			LocalesDir:      getEnv("LOCALES_DIR", ""),
			LangFromBrowser: getEnvAsBool("LANG_FROM_BROWSER", false),
			SessionTTL:      getEnvAsDuration("SESSION_TTL", 30*time.Minute),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Limit:         getEnvAsInt("RATE_LIMIT_MESSAGES", 20),
			Burst:         getEnvAsInt("RATE_LIMIT_BURST", 5),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			RedisPrefix:   getEnv("RATE_LIMIT_PREFIX", "wastechat:rl"),
		},
		Sentry: SentryConfig{
			DSN: getEnv("SENTRY_DSN", ""),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Preferences.Store {
	case StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		return fmt.Errorf("unknown PREFERENCE_STORE %q", c.Preferences.Store)
	}
	if c.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL must not be empty")
	}
	if c.Backend.Timeout < 0 {
		return fmt.Errorf("BACKEND_TIMEOUT must not be negative")
	}
	if c.Backend.BreakerFailures < 0 {
		return fmt.Errorf("BACKEND_BREAKER_FAILURES must not be negative")
	}
	return nil
}

// AllowedOrigins splits CORSOrigins into individual origins.
func (c *ServerConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
