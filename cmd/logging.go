package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/nextlevelbuilder/autoreply/internal/config"
)

// setupLogging installs the default slog handler on stderr.
// --verbose forces debug level.
func setupLogging(cfg config.LogConfig) *slog.LevelVar {
	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Level))
	if verbose {
		level.Set(slog.LevelDebug)
	}
	slog.SetDefault(slog.New(newLogHandler(os.Stderr, cfg.Format, level)))
	return level
}

func newLogHandler(w io.Writer, format string, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func parseLevel(s string) slog.Level {
	switch s {
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
