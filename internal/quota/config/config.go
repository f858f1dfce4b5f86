package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the Quota Accountant's configuration.
type Config struct {
	ServerPort  string
	DatabaseURL string
	RabbitMQURL string
	RedisURL    string

	// MaxMinPerWeek is QUOTA_MAX_MIN_PER_WEEK, default 180.
	MaxMinPerWeek int

	Environment string
}

// Load reads configuration from the environment, optionally preceded by a
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	maxMin, err := strconv.Atoi(getEnv("QUOTA_MAX_MIN_PER_WEEK", "180"))
	if err != nil {
		return nil, fmt.Errorf("invalid QUOTA_MAX_MIN_PER_WEEK: %w", err)
	}

	cfg := &Config{
		ServerPort:    getEnv("SERVER_PORT", "8083"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RabbitMQURL:   getEnv("RABBITMQ_HOST", ""),
		RedisURL:      getEnv("REDIS_URL", "redis://localhost:6379/0"),
		MaxMinPerWeek: maxMin,
		Environment:   getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_HOST is required")
	}
	if c.MaxMinPerWeek <= 0 {
		return fmt.Errorf("QUOTA_MAX_MIN_PER_WEEK must be positive")
	}
	return nil
}

// IsProduction reports whether Environment is "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
