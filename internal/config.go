package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the client configuration. Values come from the YAML
// config file, overridden by TASKDECK_* environment variables (a .env
// file in the working directory is honored too).
type Config struct {
	API struct {
		BaseURL   string `yaml:"base_url"`
		SocketURL string `yaml:"socket_url"`
	} `yaml:"api"`
	Sync struct {
		PollIntervalSeconds int `yaml:"poll_interval_seconds"`
	} `yaml:"sync"`
	Data struct {
		Dir string `yaml:"dir"`
	} `yaml:"data"`
}

// PollInterval returns the polling fallback period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Sync.PollIntervalSeconds) * time.Second
}

// DatabasePath returns the local sqlite database location.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.Data.Dir, "taskdeck.db")
}

// LoadConfig reads the config file at path (missing file is fine, the
// defaults apply) and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	// .env is a convenience for development setups; absence is normal
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}

	if v := os.Getenv("TASKDECK_API_URL"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("TASKDECK_SOCKET_URL"); v != "" {
		cfg.API.SocketURL = v
	}
	if v := os.Getenv("TASKDECK_POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Sync.PollIntervalSeconds = n
		}
	}
	if v := os.Getenv("TASKDECK_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// DefaultConfigPath returns the conventional config file location.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".taskdeck", "config.yaml")
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:4000/api"
	}
	if cfg.Sync.PollIntervalSeconds <= 0 {
		cfg.Sync.PollIntervalSeconds = 10
	}
	if cfg.Data.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.Data.Dir = filepath.Join(home, ".taskdeck")
		} else {
			cfg.Data.Dir = ".taskdeck"
		}
	}
}
