// Where: internal/config/global.go
// What: Global config load/save helpers.
// Why: Manage ~/.tvwb/config.yaml consistently.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tvwb/tradingview-webhooks-bot/internal/constants"
	"github.com/tvwb/tradingview-webhooks-bot/internal/envutil"
	"github.com/tvwb/tradingview-webhooks-bot/internal/meta"
)

// GlobalConfig represents the ~/.tvwb/config.yaml global configuration.
// Values here are defaults; command-line flags and TVWB_* variables win.
type GlobalConfig struct {
	Version        int           `yaml:"version"`
	Host           string        `yaml:"host,omitempty"`
	Port           int           `yaml:"port,omitempty"`
	StartupTimeout time.Duration `yaml:"startup_timeout,omitempty"`
	LogLevel       string        `yaml:"log_level,omitempty"`
	NtfyTopic      string        `yaml:"ntfy_topic,omitempty"`
	Journal        JournalConfig `yaml:"journal,omitempty"`
}

// JournalConfig selects and parameterizes the delivery journal backend.
type JournalConfig struct {
	Backend       string `yaml:"backend,omitempty"`
	Endpoint      string `yaml:"endpoint,omitempty"`
	Region        string `yaml:"region,omitempty"`
	Table         string `yaml:"table,omitempty"`
	ArchiveBucket string `yaml:"archive_bucket,omitempty"`
}

// DefaultGlobalConfig returns an initialized GlobalConfig with version set.
func DefaultGlobalConfig() GlobalConfig {
	return GlobalConfig{
		Version:        1,
		Host:           meta.DefaultHost,
		Port:           meta.DefaultPort,
		StartupTimeout: 60 * time.Second,
		LogLevel:       "info",
		Journal: JournalConfig{
			Backend: "memory",
			Table:   "tvwb-journal",
		},
	}
}

// HomeDir returns the tvwb state directory.
// Respects the TVWB_HOME override, else ~/.tvwb.
func HomeDir() (string, error) {
	if override := strings.TrimSpace(envutil.GetHostEnv(constants.HostSuffixHome)); override != "" {
		if filepath.IsAbs(override) {
			return override, nil
		}
		if abs, err := filepath.Abs(override); err == nil {
			return abs, nil
		}
		return override, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, meta.HomeDir), nil
}

// GlobalConfigPath returns the path to the global config file.
// Respects the TVWB_CONFIG_PATH override.
func GlobalConfigPath() (string, error) {
	if override := strings.TrimSpace(envutil.GetHostEnv(constants.HostSuffixConfigPath)); override != "" {
		path := override
		if !filepath.IsAbs(path) {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		return path, nil
	}
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// EnsureGlobalConfig creates the global config file if it doesn't exist.
func EnsureGlobalConfig() error {
	path, err := GlobalConfigPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return SaveGlobalConfig(path, DefaultGlobalConfig())
		}
		return err
	}
	return nil
}

// LoadGlobalConfig reads and parses the global configuration file.
func LoadGlobalConfig(path string) (GlobalConfig, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return GlobalConfig{}, err
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(payload, &cfg); err != nil {
		return GlobalConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadGlobalConfigOrDefault loads the global config, falling back to
// defaults when the file is missing or unreadable.
func LoadGlobalConfigOrDefault() GlobalConfig {
	path, err := GlobalConfigPath()
	if err != nil {
		return DefaultGlobalConfig()
	}
	cfg, err := LoadGlobalConfig(path)
	if err != nil {
		return DefaultGlobalConfig()
	}
	applyDefaults(&cfg)
	return cfg
}

// SaveGlobalConfig writes a GlobalConfig to the specified path.
func SaveGlobalConfig(path string, cfg GlobalConfig) error {
	payload, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, payload, 0o644)
}

// applyDefaults fills zero values so a sparse hand-edited file still
// yields a runnable configuration.
func applyDefaults(cfg *GlobalConfig) {
	def := DefaultGlobalConfig()
	if cfg.Host == "" {
		cfg.Host = def.Host
	}
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.StartupTimeout == 0 {
		cfg.StartupTimeout = def.StartupTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = def.LogLevel
	}
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = def.Journal.Backend
	}
	if cfg.Journal.Table == "" {
		cfg.Journal.Table = def.Journal.Table
	}
}
