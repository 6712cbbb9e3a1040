package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/digipathos/pkg/errors"
)

// Hook keys are addressed with a "hooks." prefix.
const (
	KeyPostExtractHook = "hooks.post_extract"
	KeyPostDatasetHook = "hooks.post_dataset"
)

// Keys returns every key accepted by SetValue and GetValue, in declaration order.
func Keys() []string {
	keys := yamlKeys(reflect.TypeOf(Settings{}))
	return append(keys, KeyPostExtractHook, KeyPostDatasetHook)
}

// SetValue sets a configuration value by key.
// Supported keys are the settings keys of the YAML file (e.g. dataset_dir, max_attempts)
// and hooks.post_extract / hooks.post_dataset.
func (c *Config) SetValue(key, value string) error {
	switch key {
	case "dataset_dir":
		c.Settings.DatasetDir = value
	case "scratch_dir":
		c.Settings.ScratchDir = value
	case "name_filter":
		c.Settings.NameFilter = value
	case "base_url":
		c.Settings.BaseURL = value
	case "list_path":
		c.Settings.ListPath = value
	case "http_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		c.Settings.HTTPTimeout = d
	case "max_attempts":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		c.Settings.MaxAttempts = n
	case "concurrency":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		c.Settings.Concurrency = n
	case "log_level":
		c.Settings.LogLevel = value
	case "output_format":
		c.Settings.OutputFormat = value
	case KeyPostExtractHook:
		c.Hooks.PostExtract = value
	case KeyPostDatasetHook:
		c.Hooks.PostDataset = value
	default:
		return errors.ErrUnknownConfigKeyWithName(key)
	}
	return nil
}

// GetValue returns the value of a configuration key as a string.
func (c *Config) GetValue(key string) (string, error) {
	switch key {
	case KeyPostExtractHook:
		return c.Hooks.PostExtract, nil
	case KeyPostDatasetHook:
		return c.Hooks.PostDataset, nil
	}
	value, ok := c.ToMap()[key]
	if !ok {
		return "", errors.ErrUnknownConfigKeyWithName(key)
	}
	return value, nil
}

// ToMap returns the settings keyed by their YAML name.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)

	settingsValue := reflect.ValueOf(c.Settings)
	settingsType := settingsValue.Type()

	for i := 0; i < settingsValue.NumField(); i++ {
		yamlKey := yamlKey(settingsType.Field(i))
		if yamlKey == "" {
			continue
		}

		fieldValue := settingsValue.Field(i)
		var strValue string

		switch v := fieldValue.Interface().(type) {
		case time.Duration:
			strValue = v.String()
		case string:
			strValue = v
		case int:
			strValue = strconv.Itoa(v)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			strValue = fmt.Sprintf("%v", v)
		}

		result[yamlKey] = strValue
	}

	result[KeyPostExtractHook] = c.Hooks.PostExtract
	result[KeyPostDatasetHook] = c.Hooks.PostDataset
	return result
}

func yamlKeys(t reflect.Type) []string {
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if key := yamlKey(t.Field(i)); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// yamlKey handles yaml tags with options (e.g., "post_extract,omitempty").
func yamlKey(field reflect.StructField) string {
	tag := field.Tag.Get("yaml")
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}
