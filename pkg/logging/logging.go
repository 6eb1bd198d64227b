// Package logging configures colored structured logging with tint on top of
// log/slog. The level comes from configuration, with the LOG_LEVEL
// environment variable as a fallback for tooling that bypasses config.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the tint handler as the default slog logger at the given
// level name (debug, info, warn, error). An empty or unknown name falls back
// to LOG_LEVEL, then to INFO.
func Setup(level string) {
	SetupWithLevel(parseLevel(level))
}

// SetupWithLevel installs the tint handler at an explicit level.
func SetupWithLevel(level slog.Level) {
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}),
	))
}

func parseLevel(name string) slog.Level {
	if name == "" {
		name = os.Getenv("LOG_LEVEL")
	}
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
