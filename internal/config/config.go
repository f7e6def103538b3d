package config

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds process-wide settings. Values come from MBKM_* environment
// variables and may be overridden by CLI flags.
type Config struct {
	APIURL     string        `envconfig:"API_URL" default:"http://localhost:8000/api"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"15s"`
	APIToken   string        `envconfig:"API_TOKEN"`

	PerPage        int           `envconfig:"PER_PAGE" default:"15"`
	SearchDebounce time.Duration `envconfig:"SEARCH_DEBOUNCE" default:"500ms"`

	LogEnabled bool   `envconfig:"LOG" default:"false"`
	LogFile    string `envconfig:"LOG_FILE"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"text"`

	ConfigDir string `envconfig:"CONFIG_DIR"`
	ExportDir string `envconfig:"EXPORT_DIR"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("mbkm", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the fields that would otherwise fail late and confusingly.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config: nil")
	}
	u, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("config: MBKM_API_URL must be an absolute http(s) URL")
	}
	if c.APITimeout <= 0 {
		return errors.New("config: MBKM_API_TIMEOUT must be positive")
	}
	if c.PerPage <= 0 {
		return errors.New("config: MBKM_PER_PAGE must be positive")
	}
	if c.SearchDebounce < 0 {
		return errors.New("config: MBKM_SEARCH_DEBOUNCE must not be negative")
	}
	switch c.LogFormat {
	case "", "text", "json":
	default:
		return errors.New("config: MBKM_LOG_FORMAT must be text or json")
	}
	return nil
}

// Dir returns the local state directory (default ~/.mbkm).
func (c *Config) Dir() (string, error) {
	if c != nil && strings.TrimSpace(c.ConfigDir) != "" {
		return c.ConfigDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".mbkm"), nil
}

// LogPath returns the log file location, defaulting into the state directory.
func (c *Config) LogPath() (string, error) {
	if c != nil && strings.TrimSpace(c.LogFile) != "" {
		return c.LogFile, nil
	}
	dir, err := c.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "mbkm.log"), nil
}

// ExportPath returns the directory exports are written into.
func (c *Config) ExportPath() string {
	if c != nil && strings.TrimSpace(c.ExportDir) != "" {
		return c.ExportDir
	}
	return "."
}
