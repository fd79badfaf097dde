package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"keymerger/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Setup initializes the global logger based on the configuration and returns it.
// Console output goes to w.
func Setup(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	logger := New(cfg, w, w)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger without touching the global default. stdout and stderr are
// the writers used for the "stdout" and "stderr" outputs.
func New(cfg config.LoggingConfig, stdout, stderr io.Writer) *slog.Logger {
	var w io.Writer = stderr

	// Configure output
	switch strings.ToLower(cfg.Output) {
	case "stdout":
		w = stdout
	case "file":
		if cfg.FilePath != "" {
			w = &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize, // megabytes
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge, // days
				Compress:   cfg.Compress,
			}
		}
	}

	opts := &slog.HandlerOptions{
		Level: ParseLevel(cfg.Level),
	}

	// Configure handler (JSON or Text)
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel maps a level name to a slog.Level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
