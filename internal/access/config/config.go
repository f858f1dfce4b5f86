package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the Access Provisioner's configuration.
type Config struct {
	ServerPort  string
	DatabaseURL string
	RabbitMQURL string

	// FailureRate is the probability (0..1) that provisioning simulates a
	// hardware failure, configurable via ACCESS_FAILURE_RATE. Default 0.1.
	FailureRate float64

	Environment string
}

// Load reads configuration from the environment, optionally preceded by a
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	failureRate, err := strconv.ParseFloat(getEnv("ACCESS_FAILURE_RATE", "0.1"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ACCESS_FAILURE_RATE: %w", err)
	}

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8082"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_HOST", ""),
		FailureRate: failureRate,
		Environment: getEnv("ENVIRONMENT", "development"),
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
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("ACCESS_FAILURE_RATE must be between 0 and 1")
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
