package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/glorpus-work/digipathos/pkg/catalog"
	pkgerrors "github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/glorpus-work/digipathos/pkg/fsutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "plant-disease-db", cfg.Settings.DatasetDir)
	assert.Equal(t, "tmp", cfg.Settings.ScratchDir)
	assert.Equal(t, catalog.FilterCropped, cfg.Settings.NameFilter)
	assert.Equal(t, catalog.DefaultBaseURL, cfg.Settings.BaseURL)
	assert.Equal(t, catalog.DefaultListPath, cfg.Settings.ListPath)
	assert.Equal(t, time.Duration(0), cfg.Settings.HTTPTimeout)
	assert.Equal(t, 3, cfg.Settings.MaxAttempts)
	assert.Equal(t, 1, cfg.Settings.Concurrency)
	assert.Equal(t, "info", cfg.Settings.LogLevel)
	assert.Equal(t, "text", cfg.Settings.OutputFormat)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "config.yaml")

	configContent := `settings:
  dataset_dir: /data/plants
  name_filter: original
  http_timeout: 45s
  concurrency: 4
  log_level: debug
hooks:
  post_extract: /hooks/count.tengo`

	require.NoError(t, os.WriteFile(configPath, []byte(configContent), fsutil.FileModeDefault))

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/data/plants", cfg.Settings.DatasetDir)
	assert.Equal(t, "tmp", cfg.Settings.ScratchDir, "unset values fall back to defaults")
	assert.Equal(t, "original", cfg.Settings.NameFilter)
	assert.Equal(t, 45*time.Second, cfg.Settings.HTTPTimeout)
	assert.Equal(t, 4, cfg.Settings.Concurrency)
	assert.Equal(t, 3, cfg.Settings.MaxAttempts)
	assert.Equal(t, "debug", cfg.Settings.LogLevel)
	assert.Equal(t, "/hooks/count.tengo", cfg.Hooks.PostExtract)
	assert.Empty(t, cfg.Hooks.PostDataset)
}

func TestLoadConfig_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	assert.ErrorIs(t, err, pkgerrors.ErrEmptyConfigPath)
}

func TestLoadConfigFromReader_Errors(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		expectedErr error
	}{
		{"invalid yaml", "settings: [unclosed", pkgerrors.ErrConfigParse},
		{"same directories", "settings:\n  dataset_dir: data\n  scratch_dir: data", pkgerrors.ErrSameDirectory},
		{"negative timeout", "settings:\n  http_timeout: -1s", pkgerrors.ErrHTTPTimeoutNegative},
		{"negative attempts", "settings:\n  max_attempts: -2", pkgerrors.ErrMaxAttemptsInvalid},
		{"negative concurrency", "settings:\n  concurrency: -1", pkgerrors.ErrConcurrencyInvalid},
		{"bad output format", "settings:\n  output_format: xml", pkgerrors.ErrInvalidOutputFormat},
		{"bad log level", "settings:\n  log_level: trace", pkgerrors.ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfigFromReader(strings.NewReader(tt.content))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestSaveConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "debug"
	cfg.Settings.HTTPTimeout = 90 * time.Second
	cfg.Hooks.PostDataset = "/hooks/summary.tengo"

	configPath := filepath.Join(t.TempDir(), "nested", "test-config.yaml")
	require.NoError(t, cfg.SaveConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http_timeout: 1m30s")
	assert.NotContains(t, string(data), "post_extract", "empty hooks are omitted")

	loadedCfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, loadedCfg)
}

func TestSaveConfig_EmptyPath(t *testing.T) {
	assert.ErrorIs(t, DefaultConfig().SaveConfig(""), pkgerrors.ErrEmptyConfigPath)
}

func TestGetDefaultConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path, err := GetDefaultConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("digipathos", "config.yaml"), filepath.Join(filepath.Base(filepath.Dir(path)), filepath.Base(path)))
}

func TestSettingsLayout(t *testing.T) {
	s := DefaultConfig().Settings
	layout := s.Layout()
	assert.Equal(t, s.DatasetDir, layout.DatasetDir)
	assert.Equal(t, s.ScratchDir, layout.ScratchDir)
}
