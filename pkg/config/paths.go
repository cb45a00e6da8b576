package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "trackeraudit"
	defaultConfigFile    = "config.yaml"
	defaultTokenFile     = "tokens.yaml"
	defaultLogDirName    = "logs"
)

func DefaultConfigPath() string {
	if env := os.Getenv("TRACKER_AUDIT_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".trackeraudit", defaultConfigFile)
}

func DefaultTokenPath() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultTokenFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".trackeraudit", defaultTokenFile)
}

// DefaultLogDir is where per-run log files land unless settings override it.
func DefaultLogDir() string {
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultLogDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".trackeraudit", defaultLogDirName)
}
