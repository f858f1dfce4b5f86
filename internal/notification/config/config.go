package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the Notification Sink's configuration. The sink has no
// persistent store and no HTTP surface, so this is just bus connectivity.
type Config struct {
	RabbitMQURL string
	Environment string
}

// Load reads configuration from the environment, optionally preceded by a
// .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg := &Config{
		RabbitMQURL: getEnv("RABBITMQ_HOST", ""),
		Environment: getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	if c.RabbitMQURL == "" {
		return fmt.Errorf("RABBITMQ_HOST is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
