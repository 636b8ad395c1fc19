package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // Build version, used to determine dev mode
	OverridePath string // Set at compile time if needed
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the first config file found and applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	path := l.GetConfigPath()
	if path == "" {
		cfg := New()
		cfg.ApplyEnv()
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// DefaultPath is where Save writes when no config file exists yet.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "cropdesk", "config.rc")
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o644); err != nil {
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	return nil
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".cropdeskrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	xdgPath := DefaultPath()
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	xdgPath = filepath.Join(filepath.Dir(xdgPath), "cropdesk.rc")
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath
	}

	return ""
}
