package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// EnvLogLevel controls the log level: debug, info, warn, error (default: info).
const EnvLogLevel = "SKETCHTOCAD_LOG_LEVEL"

// Init initializes the global logger with configuration from environment variables.
func Init() {
	SetLevel(os.Getenv(EnvLogLevel))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

// SetLevel applies a named log level, falling back to info for anything
// unrecognized.
func SetLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
