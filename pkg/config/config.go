// Package config provides configuration management for digipathos.
// It handles loading, validating and saving the settings of a run. Values come from
// built-in defaults, a YAML configuration file, a .env file and DIGIPATHOS_* environment
// variables, in increasing order of precedence; command line flags override all of them.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glorpus-work/digipathos/pkg/catalog"
	"github.com/glorpus-work/digipathos/pkg/download"
	"github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
	"github.com/glorpus-work/digipathos/pkg/workspace"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	// General settings
	Settings Settings `yaml:"settings"`

	// Hook scripts
	Hooks HooksConfig `yaml:"hooks"`
}

// Settings represents general application settings.
type Settings struct {
	// Layout settings
	DatasetDir string `yaml:"dataset_dir"`
	ScratchDir string `yaml:"scratch_dir"`
	NameFilter string `yaml:"name_filter"` // cropped, original or anything else for all

	// Repository settings
	BaseURL  string `yaml:"base_url"`
	ListPath string `yaml:"list_path"`

	// Network settings
	HTTPTimeout time.Duration `yaml:"http_timeout"` // 0 disables the timeout
	MaxAttempts int           `yaml:"max_attempts"`
	Concurrency int           `yaml:"concurrency"`

	// Output settings
	LogLevel     string `yaml:"log_level"`     // debug, info, warn, error
	OutputFormat string `yaml:"output_format"` // text, json
}

// HooksConfig holds paths to Tengo scripts.
type HooksConfig struct {
	PostExtract string `yaml:"post_extract,omitempty"`
	PostDataset string `yaml:"post_dataset,omitempty"`
}

// Default configuration values.
const (
	// DefaultConcurrency downloads one archive at a time.
	DefaultConcurrency = 1

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			DatasetDir:   workspace.DefaultDatasetDir,
			ScratchDir:   workspace.DefaultScratchDir,
			NameFilter:   catalog.FilterCropped,
			BaseURL:      catalog.DefaultBaseURL,
			ListPath:     catalog.DefaultListPath,
			MaxAttempts:  download.DefaultMaxAttempts,
			Concurrency:  DefaultConcurrency,
			OutputFormat: "text",
			LogLevel:     "info",
		},
	}
}

// LoadConfig loads configuration from a file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	file, err := os.Open(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}
	defer func() { _ = file.Close() }()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader.
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config data")
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a file.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrInvalidConfigPath, err.Error())
	}

	if err := fsutil.EnsureDir(filepath.Dir(absPath)); err != nil {
		return errors.Wrap(errors.ErrConfigDirectory, err.Error())
	}

	data, err := c.ToYAML()
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(absPath, data, fsutil.FileModeDefault); err != nil {
		return errors.Wrap(errors.ErrConfigFileCreate, err.Error())
	}
	return nil
}

// ToYAML converts the config to YAML bytes.
func (c *Config) ToYAML() ([]byte, error) {
	var sb strings.Builder
	encoder := yaml.NewEncoder(&sb)
	encoder.SetIndent(YAMLIndent)
	if err := encoder.Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	if err := encoder.Close(); err != nil {
		return nil, errors.Wrap(errors.ErrConfigEncode, err.Error())
	}
	return []byte(sb.String()), nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	return validateSettings(c.Settings)
}

func validateSettings(s Settings) error {
	if err := s.Layout().Validate(); err != nil {
		return err
	}
	if s.HTTPTimeout < 0 {
		return errors.ErrHTTPTimeoutNegative
	}
	if s.MaxAttempts < 1 {
		return errors.ErrMaxAttemptsInvalid
	}
	if s.Concurrency < 1 {
		return errors.ErrConcurrencyInvalid
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[s.OutputFormat] {
		return errors.ErrInvalidOutputFormatWithDetails(s.OutputFormat)
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.ErrInvalidLogLevelWithDetails(s.LogLevel)
	}
	return nil
}

// Layout returns the dataset and scratch directories of the settings.
func (s Settings) Layout() workspace.Layout {
	return workspace.Layout{DatasetDir: s.DatasetDir, ScratchDir: s.ScratchDir}
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configDir, "digipathos", "config.yaml"), nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.DatasetDir == "" {
		c.Settings.DatasetDir = defaults.Settings.DatasetDir
	}
	if c.Settings.ScratchDir == "" {
		c.Settings.ScratchDir = defaults.Settings.ScratchDir
	}
	if c.Settings.NameFilter == "" {
		c.Settings.NameFilter = defaults.Settings.NameFilter
	}
	if c.Settings.BaseURL == "" {
		c.Settings.BaseURL = defaults.Settings.BaseURL
	}
	if c.Settings.ListPath == "" {
		c.Settings.ListPath = defaults.Settings.ListPath
	}
	if c.Settings.MaxAttempts == 0 {
		c.Settings.MaxAttempts = defaults.Settings.MaxAttempts
	}
	if c.Settings.Concurrency == 0 {
		c.Settings.Concurrency = defaults.Settings.Concurrency
	}
	if c.Settings.OutputFormat == "" {
		c.Settings.OutputFormat = defaults.Settings.OutputFormat
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
}
