package config

import (
	"os"
	"path/filepath"
)

// EnvConfig overrides the configuration file location.
const EnvConfig = "AAGENT_CONFIG"

// GetConfigPath returns $AAGENT_CONFIG, or ~/.aagent/config.
func GetConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".aagent", "config"), nil
}

// EnsureConfigDir creates the directory holding the config file.
func EnsureConfigDir() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
