package config

import (
	"os"
	"path/filepath"
)

// UserConfigPath returns the path to the user-level config file.
// This follows os.UserConfigDir:
// - Linux: ~/.config/easbuild/config.yml
// - macOS: ~/Library/Application Support/easbuild/config.yml
// - Windows: %APPDATA%\easbuild\config.yml
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yml"), nil
}

// UserConfigDir returns the path to the user-level config directory.
func UserConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "easbuild"), nil
}

// ProjectConfigPath returns the path to the project-level config file in projectDir.
func ProjectConfigPath(projectDir string) string {
	return filepath.Join(ProjectConfigDir(projectDir), "config.yml")
}

// ProjectConfigDir returns the path to the project-level config directory.
func ProjectConfigDir(projectDir string) string {
	return filepath.Join(projectDir, ".easbuild")
}
