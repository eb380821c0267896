// Package config loads runtime configuration from environment variables,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings.
type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// PostgreSQL
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"eventgate"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Sessions
	JWTSecret  string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"`

	// Admin bootstrap
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@eventgate.local"`
	AdminName     string `env:"ADMIN_NAME" envDefault:"Administrator"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin1234"`

	// Validator context: the calendar-day check at the door is evaluated
	// in this timezone.
	Timezone string `env:"TIMEZONE" envDefault:"Local"`

	// Rate limiting (optional; disabled when RedisAddr is empty)
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RateLimit     int    `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`
}

// Load reads .env if present, then parses the environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return &cfg, nil
}

// DSN builds a libpq-compatible connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// Location resolves the configured validator timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || c.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}
