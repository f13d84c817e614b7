// Package logging builds the process-wide structured logger.
//
// Grounded on nugget-thane-ai-agent/internal/config/logging.go: LOG_LEVEL
// accepts debug|info|minimal and is parsed into an slog.Level, with
// "minimal" mapped to a level above Info so routine request logs are
// suppressed but errors still surface.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// ParseLevel converts a LOG_LEVEL string to an slog.Level.
// Supported values: debug, info, minimal (case-insensitive). Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "minimal":
		return slog.LevelWarn, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (valid: debug, info, minimal)", s)
	}
}

// New builds a logger writing text-formatted records to w at the given level.
func New(w io.Writer, level slog.Level) *slog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
