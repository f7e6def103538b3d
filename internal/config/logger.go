package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// NewLogger returns the process logger. The TUI owns stdout, so logs go to a
// file when MBKM_LOG is on and are discarded otherwise. The returned closer
// must be called on shutdown.
func NewLogger(cfg *Config) (*slog.Logger, io.Closer, error) {
	if cfg == nil || !cfg.LogEnabled {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nopCloser{}, nil
	}
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	opts := &slog.HandlerOptions{AddSource: true, Level: slog.LevelDebug}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(f, opts)), f, nil
	}
	return slog.New(slog.NewTextHandler(f, opts)), f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
