package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".storymaster"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
// STORYMASTER_CONFIG overrides the default location.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("STORYMASTER_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

// Load reads the config file, applies STORYMASTER_* env overrides, and
// expands ~ in path settings. A missing config file yields defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := envconfig.Process("STORYMASTER", cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}

	cfg.Paths.AgentsDir = expandHome(cfg.Paths.AgentsDir)
	cfg.Paths.ResourcesDir = expandHome(cfg.Paths.ResourcesDir)
	cfg.Paths.SessionsDir = expandHome(cfg.Paths.SessionsDir)
	cfg.Paths.DatabasePath = expandHome(cfg.Paths.DatabasePath)
	return cfg, nil
}

// Save writes the config file, creating the config directory if needed.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func expandHome(p string) string {
	if !strings.HasPrefix(p, "~") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p[1:], string(filepath.Separator)))
}
