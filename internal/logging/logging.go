// Package logging configures the process-wide structured logger. Setup runs
// exactly once at process start; services receive child loggers via
// constructor injection, never by re-registering sinks.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"looksee/internal/config"
)

// Setup opens the configured log file and installs a JSON slog handler
// writing to it and to stderr. The returned closer flushes the file handle
// at shutdown.
func Setup(cfg *config.Config) (*slog.Logger, func() error, error) {
	path := cfg.Settings.LogFile
	if err := rolloverIfOversize(path, cfg.Settings.LogMaxSizeMB); err != nil {
		return nil, nil, fmt.Errorf("rotate log file: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %q: %w", path, err)
	}

	handler := slog.NewJSONHandler(io.MultiWriter(os.Stderr, f), &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger, f.Close, nil
}

// rolloverIfOversize moves an oversized log file aside (single .1 backup)
// before a fresh one is opened. Size-based, checked once at startup.
func rolloverIfOversize(path string, maxSizeMB int) error {
	fi, err := os.Stat(path)
	if err != nil || maxSizeMB <= 0 {
		return nil // absent file or unlimited size: nothing to do
	}
	if fi.Size() < int64(maxSizeMB)*1024*1024 {
		return nil
	}
	return os.Rename(path, path+".1")
}
