package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "http://localhost:8000/api" {
		t.Fatalf("unexpected api url %q", cfg.APIURL)
	}
	if cfg.PerPage != 15 {
		t.Fatalf("expected per page 15, got %d", cfg.PerPage)
	}
	if cfg.SearchDebounce != 500*time.Millisecond {
		t.Fatalf("expected 500ms debounce, got %s", cfg.SearchDebounce)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MBKM_API_URL", "https://mbkm.example.ac.id/api/v1")
	t.Setenv("MBKM_API_TIMEOUT", "3s")
	t.Setenv("MBKM_LOG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://mbkm.example.ac.id/api/v1" || cfg.APITimeout != 3*time.Second || !cfg.LogEnabled {
		t.Fatalf("env not applied: %#v", cfg)
	}
}

func TestValidate_RejectsRelativeURL(t *testing.T) {
	cfg := &Config{APIURL: "/api", APITimeout: time.Second, PerPage: 10}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected relative url to be rejected")
	}
}

func TestNewLogger_WritesToFileWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{LogEnabled: true, ConfigDir: dir}

	log, closer, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Info("hello", "component", "test")
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	path, _ := cfg.LogPath()
	if path != filepath.Join(dir, "mbkm.log") {
		t.Fatalf("unexpected log path %q", path)
	}
}
