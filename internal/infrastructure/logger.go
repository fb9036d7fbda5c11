// Package infrastructure provides process-level wiring that the domain
// packages should not know about, currently the slog logger construction.
package infrastructure

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"lserisk/internal/config"
)

// NewLogger builds a JSON slog logger from the logging configuration.
// Output modes: "console" (stderr), "file", or "both". The returned cleanup
// function closes the log file when one was opened; call it on shutdown.
//
// Verbose forces debug level regardless of the configured level.
func NewLogger(cfg config.LoggingConfig, verbose bool) (*slog.Logger, func() error, error) {
	level := parseLogLevel(cfg.Level)
	if verbose {
		level = slog.LevelDebug
	}

	cleanup := func() error { return nil }

	var output io.Writer
	switch strings.ToLower(cfg.Output) {
	case "file":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		output = file
		cleanup = file.Close
	case "both":
		file, err := openLogFile(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		output = io.MultiWriter(os.Stderr, file)
		cleanup = file.Close
	default:
		// Logs go to stderr so the rendered report owns stdout
		output = os.Stderr
	}

	handler := slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
	return slog.New(handler), cleanup, nil
}

// parseLogLevel converts a config level string to a slog.Level
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// openLogFile opens the log file in append mode, creating its directory
func openLogFile(filePath string) (*os.File, error) {
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", filePath, err)
	}

	return file, nil
}
