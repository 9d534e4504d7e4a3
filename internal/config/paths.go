package config

import (
	"os"
	"path/filepath"
)

const (
	appName = "change-tag-push"

	// ProjectConfigFile is the project-level YAML config name.
	ProjectConfigFile = ".change-tag-push.yml"
	// ProjectJSONConfigFile is read when no YAML project config exists.
	ProjectJSONConfigFile = ".change-tag-push.json"
)

// UserConfigPath returns the path to the user-level config file.
// This follows the XDG Base Directory Specification:
// - Linux: ~/.config/change-tag-push/config.yml
// - macOS: ~/Library/Application Support/change-tag-push/config.yml
// - Windows: %APPDATA%\change-tag-push\config.yml
//
// If XDG_CONFIG_HOME is set, it will be respected on Linux.
func UserConfigPath() (string, error) {
	configDir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, appName), nil
}

// ProjectConfigPath returns the YAML project config in dir.
func ProjectConfigPath(dir string) string {
	return filepath.Join(dir, ProjectConfigFile)
}

// ProjectJSONConfigPath returns the JSON project config in dir.
func ProjectJSONConfigPath(dir string) string {
	return filepath.Join(dir, ProjectJSONConfigFile)
}
