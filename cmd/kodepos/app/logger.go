package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/kodepos-id/kodepos/pkg/logging"
)

// LogLevelEnv lists the environment variables bound to log.level, highest
// precedence first.
var LogLevelEnv = []string{EnvPrefix + "_LOG_LEVEL", "LOG_LEVEL"}

// NewLogger creates a configured logger based on the application configuration.
func NewLogger(config *Config) zerolog.Logger {
	level := determineLogLevel(config)

	logConfig := &logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	}

	return logging.NewLoggerFromConfig(logConfig)
}

// levelSource is one place the log level can come from.
type levelSource struct {
	name  string
	level string
	set   bool
}

// determineLogLevel walks the level sources in precedence order:
// --log-level (or the log.level config key and LogLevelEnv, which
// UpdateFromFlags has already folded into LogLevel), then --quiet, then
// --verbose, then info.
func determineLogLevel(config *Config) string {
	if config.Verbose && config.Quiet && config.LogLevel == "" {
		fmt.Fprintf(os.Stderr, "Warning: both --verbose and --quiet specified, using --quiet\n")
	}

	sources := []levelSource{
		{name: "--log-level / " + LogLevelEnv[0], level: config.LogLevel, set: config.LogLevel != ""},
		{name: "--quiet", level: "warn", set: config.Quiet},
		{name: "--verbose", level: "debug", set: config.Verbose},
	}
	for _, src := range sources {
		if !src.set {
			continue
		}
		validated := validateLogLevel(src.level)
		if validated != src.level {
			fmt.Fprintf(os.Stderr, "Warning: invalid log level %q from %s, using %q\n", src.level, src.name, validated)
		}
		return validated
	}
	return "info"
}

// validateLogLevel returns level when it is known and "info" otherwise.
func validateLogLevel(level string) string {
	switch level {
	case "trace", "debug", "info", "warn", "error":
		return level
	default:
		return "info"
	}
}
