package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all client configuration
type Config struct {
	// Backend API
	BackendURL  string
	HTTPTimeout time.Duration

	// Environment
	Environment string
	LogLevel    string

	// Durable client state (token slot, wallet keypair)
	StateDir string

	// Dev server
	DevAddr       string
	DevJWTSecret  string
	DevCORSOrigin string
}

// LoadConfig loads configuration from the environment. A .env file is
// honored in development.
func LoadConfig() (*Config, error) {
	if getEnv("KINGFACE_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		BackendURL:  getEnv("KINGFACE_BACKEND_URL", "http://localhost:8080"),
		HTTPTimeout: time.Duration(getEnvInt("KINGFACE_HTTP_TIMEOUT_MS", 15000)) * time.Millisecond,

		Environment: getEnv("KINGFACE_ENV", "development"),
		LogLevel:    getEnv("KINGFACE_LOG_LEVEL", "info"),

		StateDir: getEnv("KINGFACE_STATE_DIR", defaultStateDir()),

		DevAddr:       getEnv("KINGFACE_DEV_ADDR", ":8080"),
		DevJWTSecret:  getEnv("KINGFACE_DEV_JWT_SECRET", "development-secret-change-in-production"),
		DevCORSOrigin: getEnv("KINGFACE_DEV_CORS_ORIGIN", "http://localhost:3000"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("KINGFACE_BACKEND_URL is required")
	}
	if c.StateDir == "" {
		return fmt.Errorf("KINGFACE_STATE_DIR is required")
	}
	if c.IsProduction() && c.DevJWTSecret == "development-secret-change-in-production" {
		return fmt.Errorf("KINGFACE_DEV_JWT_SECRET must be set in production")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "kingface")
	}
	return ".kingface"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
