// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting for the API server.
type Config struct {
	// Server settings
	Port    string
	GinMode string

	// CORS settings (comma-separated origins)
	CORSAllowedOrigins string

	// Database settings
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxIdleMinutes int
	DBConnMaxLifeMinutes int

	// Session settings. An empty RedisURL selects the in-memory registry.
	RedisURL   string
	SessionTTL time.Duration
}

// Load reads configuration from the environment, merging in a .env
// file when one exists next to the binary.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "todolist"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		DBMaxOpenConns:       getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxIdleMinutes: getEnvAsInt("DB_CONN_MAX_IDLE_MINUTES", 5),
		DBConnMaxLifeMinutes: getEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 30),

		RedisURL:   getEnv("REDIS_URL", ""),
		SessionTTL: time.Duration(getEnvAsInt("SESSION_TTL_HOURS", 24)) * time.Hour,
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks settings that have no safe fallback.
func (c *Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be positive")
	}
	if c.GinMode == "release" && c.DBPassword == "password" {
		return fmt.Errorf("DB_PASSWORD must be set in release mode")
	}
	return nil
}

// getEnv returns an environment variable or a default value.
func getEnv(key string, defaultValue string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as a positive integer.
func getEnvAsInt(key string, defaultValue int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
