// Package config provides hierarchical configuration for change-tag-push using koanf.
// Configuration is loaded with priority: environment variables (CTP_*) > project config
// (.change-tag-push.yml, or .change-tag-push.json when no YAML file exists)
// > user config (~/.config/change-tag-push/config.yml) > defaults.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changelog"
	"github.com/lohengrin332/App-Git-ChangeTagPush/internal/changes"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "CTP_"

// ConfigSource tracks where a configuration value came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceUser    ConfigSource = "user"
	SourceProject ConfigSource = "project"
	SourceEnv     ConfigSource = "env"
)

// Configuration represents the change-tag-push configuration
type Configuration struct {
	// ChangelogFile is the changelog path relative to the repository root.
	ChangelogFile string `koanf:"changelog_file" validate:"required"`
	// WrapColumns is the column at which change lines are wrapped.
	WrapColumns int    `koanf:"wrap_columns" validate:"min=20"`
	Placeholder string `koanf:"placeholder" validate:"required"`
	// DateFormat is the strftime layout used for "today".
	DateFormat string `koanf:"date_format" validate:"required"`

	Remote string `koanf:"remote" validate:"required"`
	// PushMethod selects the push implementation: "go-git" or "cli".
	PushMethod string `koanf:"push_method" validate:"oneof=go-git cli"`

	AllowDirty        bool `koanf:"allow_dirty"`
	SkipConfirmations bool `koanf:"skip_confirmations"` // Can also be set via CTP_YES

	// Editor overrides $VISUAL and $EDITOR.
	Editor string `koanf:"editor"`

	// ChangeFormat renders one change line; expands {subject}, {short}, {ref}.
	// Empty means "<subject> - <short ref>".
	ChangeFormat string `koanf:"change_format"`

	CommitMessage     string `koanf:"commit_message" validate:"required"`
	TagMessage        string `koanf:"tag_message" validate:"required"`
	NextCommitMessage string `koanf:"next_commit_message" validate:"required"`

	// Preamble seeds new changelog files; {project} expands to the repository name.
	Preamble string `koanf:"preamble"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectDir is the directory holding the project config (default: current directory)
	ProjectDir string
	// ProjectConfigPath overrides the project config path
	ProjectConfigPath string
	// UserConfigPath overrides the user config path (for testing)
	UserConfigPath string
	// SkipUserConfig ignores the user config entirely
	SkipUserConfig bool
	// WarningWriter receives warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
func Load(projectDir string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectDir: projectDir})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	cfg, _, err := load(opts)
	return cfg, err
}

// LoadWithSources loads configuration and reports the source of every key.
func LoadWithSources(opts LoadOptions) (*Configuration, map[string]ConfigSource, error) {
	return load(opts)
}

func load(opts LoadOptions) (*Configuration, map[string]ConfigSource, error) {
	k := koanf.New(".")
	sources := make(map[string]ConfigSource)
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)
	markSources(k, sources, SourceDefault)

	if !opts.SkipUserConfig {
		layer := koanf.New(".")
		if err := loadUserConfig(layer, opts.UserConfigPath); err != nil {
			return nil, nil, err
		}
		if err := merge(k, layer, sources, SourceUser); err != nil {
			return nil, nil, err
		}
	}

	layer := koanf.New(".")
	if err := loadProjectConfig(layer, opts, warningWriter); err != nil {
		return nil, nil, err
	}
	if err := merge(k, layer, sources, SourceProject); err != nil {
		return nil, nil, err
	}

	layer = koanf.New(".")
	if err := loadEnvironmentConfig(layer); err != nil {
		return nil, nil, err
	}
	if err := merge(k, layer, sources, SourceEnv); err != nil {
		return nil, nil, err
	}

	cfg, err := finalizeConfig(k)
	if err != nil {
		return nil, nil, err
	}
	if os.Getenv(EnvPrefix+"YES") != "" {
		sources["skip_confirmations"] = SourceEnv
	}
	return cfg, sources, nil
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// merge copies a loaded layer over k and records which keys it supplied.
func merge(k, layer *koanf.Koanf, sources map[string]ConfigSource, src ConfigSource) error {
	if len(layer.Keys()) == 0 {
		return nil
	}
	if err := k.Merge(layer); err != nil {
		return fmt.Errorf("merging %s config: %w", src, err)
	}
	markSources(layer, sources, src)
	return nil
}

func markSources(k *koanf.Koanf, sources map[string]ConfigSource, src ConfigSource) {
	for _, key := range k.Keys() {
		sources[key] = src
	}
}

// loadUserConfig loads ~/.config/change-tag-push/config.yml when present.
func loadUserConfig(k *koanf.Koanf, override string) error {
	path := override
	if path == "" {
		path, _ = UserConfigPath()
	}
	if !fileExists(path) {
		return nil
	}
	if err := loadYAMLConfig(k, path, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads the project YAML config, falling back to JSON.
// Warns when both exist; the YAML file wins.
func loadProjectConfig(k *koanf.Koanf, opts LoadOptions, warningWriter io.Writer) error {
	if opts.ProjectConfigPath != "" {
		if !fileExists(opts.ProjectConfigPath) {
			return fmt.Errorf("project config %s not found", opts.ProjectConfigPath)
		}
		return loadByExtension(k, opts.ProjectConfigPath)
	}

	yamlPath := ProjectConfigPath(opts.ProjectDir)
	jsonPath := ProjectJSONConfigPath(opts.ProjectDir)
	yamlExists := fileExists(yamlPath)
	jsonExists := fileExists(jsonPath)

	switch {
	case yamlExists:
		if jsonExists && !opts.SkipWarnings {
			fmt.Fprintf(warningWriter, "Warning: %s ignored, using %s\n", jsonPath, yamlPath)
		}
		if err := loadYAMLConfig(k, yamlPath, "project"); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
	case jsonExists:
		if err := loadJSONConfig(k, jsonPath, "project"); err != nil {
			return fmt.Errorf("loading project config: %w", err)
		}
	}
	return nil
}

func loadByExtension(k *koanf.Koanf, path string) error {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return loadJSONConfig(k, path, "project")
	}
	return loadYAMLConfig(k, path, "project")
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLFile(path); err != nil {
		return fmt.Errorf("validating %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadJSONConfig loads a JSON config file
func loadJSONConfig(k *koanf.Koanf, path, configType string) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return &ValidationError{FilePath: path, Message: fmt.Sprintf("invalid %s config: %v", configType, err)}
	}
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	// CTP_YES is a flag, not a key.
	k.Delete("yes")
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.Editor = expandHomePath(cfg.Editor)

	if os.Getenv(EnvPrefix+"YES") != "" {
		cfg.SkipConfirmations = true
	}
	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys
// Example: CTP_WRAP_COLUMNS -> wrap_columns
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

// ChangelogFormat returns the serializer settings.
func (c *Configuration) ChangelogFormat() changelog.Format {
	return changelog.Format{Placeholder: c.Placeholder, WrapColumns: c.WrapColumns}
}

// Formatter returns the change-line formatter.
func (c *Configuration) Formatter() changes.Formatter {
	if c.ChangeFormat == "" {
		return changes.DefaultFormatter
	}
	return changes.TemplateFormatter(c.ChangeFormat)
}

// PreambleFor expands {project} in the configured preamble.
func (c *Configuration) PreambleFor(project string) string {
	return strings.ReplaceAll(c.Preamble, "{project}", project)
}

// ChangelogPath joins the changelog file onto the repository root.
func (c *Configuration) ChangelogPath(root string) string {
	if filepath.IsAbs(c.ChangelogFile) {
		return c.ChangelogFile
	}
	return filepath.Join(root, c.ChangelogFile)
}
