// Package logging configures the process-wide slog logger shared by
// the bot loop and the admin server.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup installs the default slog logger. level is one of "debug",
// "info", "warn" or "error" and format is "json" or "text"; anything
// unrecognised falls back to info-level JSON, which is what the
// container deployment scrapes.
func Setup(level, format string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	if strings.ToLower(format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler).With("service", "railbot"))
}
