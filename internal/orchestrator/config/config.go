package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the Booking Orchestrator's configuration, loaded from
// environment variables with sensible development defaults.
type Config struct {
	// ServerPort is the HTTP port the server listens on.
	ServerPort string

	// DatabaseURL is the MySQL DSN for this service's private schema.
	DatabaseURL string

	// RabbitMQURL is the AMQP connection URL for the event bus.
	RabbitMQURL string

	// AccessURL is the base URL of the Access Provisioner, used for
	// synchronous CheckIn validation calls.
	AccessURL string

	// QuotaURL is the base URL of the Quota Accountant, used for the
	// synchronous CheckOut commit call.
	QuotaURL string

	// LocalTZ is the IANA time zone used to interpret naive Create
	// timestamps and to render reads. Default "America/Toronto".
	LocalTZ string

	// Environment is "development" or "production"; affects logging.
	Environment string
}

// Load reads configuration from the environment, optionally preceded by a
// .env file in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8081"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_HOST", ""),
		AccessURL:   getEnv("ACCESS_URL", "http://localhost:8082"),
		QuotaURL:    getEnv("QUOTA_URL", "http://localhost:8083"),
		LocalTZ:     getEnv("LOCAL_TZ", "America/Toronto"),
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
