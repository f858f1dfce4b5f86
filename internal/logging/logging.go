// Package logging configures the process-global zerolog logger: a
// LOG_LEVEL env switch and an ENVIRONMENT switch between a console writer
// and raw JSON. Factored into one function since this module runs four
// services from one binary tree.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger and returns it tagged with the
// service name, so every log line from this process carries "service".
func Setup(serviceName string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch os.Getenv("LOG_LEVEL") {
	case "DEBUG":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "WARN":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "ERROR":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if os.Getenv("ENVIRONMENT") == "production" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", serviceName).Logger()
	} else {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}).With().Timestamp().Str("service", serviceName).Logger()
	}

	return log.Logger
}
