package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Switch modes control how the active family member is changed
const (
	SwitchModeStrict  = "strict"
	SwitchModeTrusted = "trusted"
)

// DefaultSessionSecret is used when SESSION_SECRET is unset. It is public,
// so cookies signed with it can be forged.
const DefaultSessionSecret = "change-me-in-production"

// Config holds application configuration
type Config struct {
	ServerPort      string
	DatabaseType    string
	DatabaseURL     string
	DatabasePath    string
	SessionSecret   string
	SessionDuration time.Duration
	StaticFilesPath string
	TemplatesPath   string
	MigrationsPath  string
	CatalogPath     string
	DefaultColor    string
	SwitchMode      string
	LogLevel        string
	LoginRateLimit  int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	// Missing .env is the normal case in production
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("PORT", "3000"),
		DatabaseType:    getEnv("DATABASE_TYPE", "sqlite"),
		DatabaseURL:     getEnv("DATABASE_URL", os.Getenv("POSTGRES_URL")),
		DatabasePath:    getEnv("DB_PATH", "./familytravel.db"),
		SessionSecret:   getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionDuration: getDuration("SESSION_DURATION", 24*time.Hour),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		CatalogPath:     getEnv("CATALOG_PATH", "./data/countries.csv"),
		DefaultColor:    getEnv("DEFAULT_COLOR", "teal"),
		SwitchMode:      normalizeSwitchMode(getEnv("SWITCH_MODE", SwitchModeStrict)),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LoginRateLimit:  getInt("LOGIN_RATE_LIMIT", 10),
	}
}

// UsesDefaultSessionSecret reports whether SESSION_SECRET was left unset
func (c *Config) UsesDefaultSessionSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

// normalizeSwitchMode falls back to strict for anything unrecognised
func normalizeSwitchMode(mode string) string {
	if strings.EqualFold(strings.TrimSpace(mode), SwitchModeTrusted) {
		return SwitchModeTrusted
	}
	return SwitchModeStrict
}
