// Package config provides hierarchical configuration management for easbuild using koanf.
// Configuration is loaded with priority: environment variables > explicit --config file
// > project config (.easbuild/config.yml) > user config (~/.config/easbuild/config.yml) > defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/ariel-frischer/easbuild/internal/easjson"
)

// EnvPrefix is the prefix of environment variables that override config keys.
const EnvPrefix = "EASBUILD_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceFile    ConfigSource = "file"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the easbuild CLI tool configuration
type Configuration struct {
	// NonInteractive disables every prompt. Also enabled when CI is set.
	NonInteractive bool `koanf:"non_interactive"`

	// DefaultWorkflow is the workflow written into a freshly created eas.json.
	DefaultWorkflow string `koanf:"default_workflow" validate:"oneof=generic managed"`

	// CommitMessage is used when easbuild commits eas.json on the user's behalf.
	CommitMessage string `koanf:"commit_message" validate:"required"`

	SkipCredentialsCheck bool `koanf:"skip_credentials_check"`
	Spinner              bool `koanf:"spinner"`

	// SessionPath overrides where login sessions are stored. Supports ~/.
	SessionPath string `koanf:"session_path"`
}

// Workflow returns DefaultWorkflow as an easjson.Workflow.
func (c *Configuration) Workflow() easjson.Workflow {
	return easjson.Workflow(c.DefaultWorkflow)
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectDir is the directory holding .easbuild/config.yml (default: current directory)
	ProjectDir string
	// UserConfigPath overrides the user config path (default: UserConfigPath())
	UserConfigPath string
	// ConfigFile is an explicit config file. It must exist when set.
	ConfigFile string
}

// Load loads configuration for the project in projectDir.
func Load(projectDir string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectDir: projectDir})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")

	loadDefaults(k)

	userPath := opts.UserConfigPath
	if userPath == "" {
		userPath, _ = UserConfigPath()
	}
	if err := loadOptionalYAML(k, userPath, SourceUser); err != nil {
		return nil, err
	}

	if err := loadOptionalYAML(k, ProjectConfigPath(opts.ProjectDir), SourceProject); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		if !fileExists(opts.ConfigFile) {
			return nil, fmt.Errorf("loading config file %s: %w", opts.ConfigFile, fs.ErrNotExist)
		}
		if err := loadYAMLConfig(k, opts.ConfigFile, SourceFile); err != nil {
			return nil, err
		}
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

func loadOptionalYAML(k *koanf.Koanf, path string, source ConfigSource) error {
	if !fileExists(path) {
		return nil
	}
	return loadYAMLConfig(k, path, source)
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path string, source ConfigSource) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", source, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("loading %s config %s: %w", source, path, err)
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("loading environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.SessionPath = expandHomePath(cfg.SessionPath)

	if isCI(os.Getenv("CI")) {
		cfg.NonInteractive = true
	}

	return &cfg, nil
}

// isCI reports whether the CI variable is set to a truthy value. Values that
// are not booleans, such as "woodpecker", count as set.
func isCI(value string) bool {
	if value == "" {
		return false
	}
	ci, err := strconv.ParseBool(value)
	return err != nil || ci
}

// fileExists returns true if path exists and is a regular file
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist) && !errors.Is(err, fs.ErrPermission)
	}
	return !info.IsDir()
}

// envTransform converts environment variable names to config keys
// Example: EASBUILD_NON_INTERACTIVE -> non_interactive
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
