// Package log bootstraps structured logging. The terminal UI owns both
// stdout and stderr while the editor runs, so log output goes to a file,
// and only when the RSVIM_LOG environment variable asks for it.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init builds the process logger from the environment and installs it as
// the slog default. RSVIM_LOG selects the level (debug, info, warn,
// error); unset or empty disables logging. RSVIM_LOG_FILE overrides the
// default rsvim.log in the working directory.
func Init() *slog.Logger {
	level, enabled := parseLevel(os.Getenv("RSVIM_LOG"))
	if !enabled {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return logger
	}

	path := os.Getenv("RSVIM_LOG_FILE")
	if path == "" {
		path = "rsvim.log"
	}
	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		// Logging must never take the editor down.
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(logger)
		return logger
	}

	logger := slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

func parseLevel(raw string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "debug", "trace":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return 0, false
	}
}
