// Package logging provides structured logging for the bundler on top
// of log/slog, with component scoping and a verbose (debug) mode that
// the CLI toggles per invocation.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the logging surface used by the pipeline components.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(err error, msg string, fields ...any)

	WithComponent(component string) Logger
	Verbose() bool
}

// Config holds logger configuration.
type Config struct {
	Level   slog.Level
	Format  string // "json" or "text"
	Output  io.Writer
	Verbose bool
}

// DefaultConfig returns the default logger configuration. Diagnostics
// go to stderr so bundles written to stdout stay clean.
func DefaultConfig() *Config {
	return &Config{
		Level:  slog.LevelInfo,
		Format: "text",
		Output: os.Stderr,
	}
}

// ParseLevel converts a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type bundleLogger struct {
	logger  *slog.Logger
	verbose bool
}

// New creates a structured logger from config. Verbose forces the
// debug level regardless of the configured one.
func New(config *Config) Logger {
	if config == nil {
		config = DefaultConfig()
	}
	level := config.Level
	if config.Verbose {
		level = slog.LevelDebug
	}
	out := config.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &bundleLogger{logger: slog.New(handler), verbose: config.Verbose}
}

// Discard returns a logger that drops everything; used by tests and as
// a default when components are constructed without one.
func Discard() Logger {
	return &bundleLogger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *bundleLogger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, fields...)
}

func (l *bundleLogger) Info(msg string, fields ...any) {
	l.logger.Info(msg, fields...)
}

func (l *bundleLogger) Warn(msg string, fields ...any) {
	l.logger.Warn(msg, fields...)
}

func (l *bundleLogger) Error(err error, msg string, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	}
	l.logger.Error(msg, fields...)
}

func (l *bundleLogger) WithComponent(component string) Logger {
	return &bundleLogger{
		logger:  l.logger.With(slog.String("component", component)),
		verbose: l.verbose,
	}
}

func (l *bundleLogger) Verbose() bool {
	return l.verbose
}
