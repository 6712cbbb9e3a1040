// Package errors holds the sentinel errors shared across digipathos and small
// helpers for adding context to them.
package errors

import "fmt"

// Common error types.
var (
	// Workspace errors.
	ErrSameDirectory = fmt.Errorf("dataset and scratch directories cannot be the same")
	ErrCreateDir     = fmt.Errorf("failed to create directory")
	ErrInvalidPath   = fmt.Errorf("invalid path")

	// Pipeline errors.
	ErrCatalogFetch     = fmt.Errorf("failed to fetch catalog")
	ErrCatalogMalformed = fmt.Errorf("malformed catalog")
	ErrDownloadFailed   = fmt.Errorf("download failed")
	ErrExtractFailed    = fmt.Errorf("extraction failed")
	ErrIncomplete       = fmt.Errorf("dataset is incomplete")

	// Config errors.
	ErrEmptyConfigPath     = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath   = fmt.Errorf("invalid config file path")
	ErrConfigParse         = fmt.Errorf("failed to parse config")
	ErrConfigValidation    = fmt.Errorf("invalid configuration")
	ErrConfigEncode        = fmt.Errorf("failed to encode config")
	ErrConfigDirectory     = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate    = fmt.Errorf("failed to create config file")
	ErrConfigFileExists    = fmt.Errorf("configuration file already exists (use --force to overwrite)")
	ErrUnknownConfigKey    = fmt.Errorf("unknown configuration key")
	ErrHTTPTimeoutNegative = fmt.Errorf("http_timeout cannot be negative")
	ErrMaxAttemptsInvalid  = fmt.Errorf("max_attempts must be at least 1")
	ErrConcurrencyInvalid  = fmt.Errorf("concurrency must be at least 1")
	ErrInvalidOutputFormat = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")

	// Hook errors.
	ErrHookExecution = fmt.Errorf("error executing hook")
	ErrHookScript    = fmt.Errorf("hook script error")
	ErrHookLoad      = fmt.Errorf("failed to load hook")
)

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// ErrInvalidOutputFormatWithDetails is a helper to create a wrapped error with the invalid format and valid options.
func ErrInvalidOutputFormatWithDetails(format string) error {
	return fmt.Errorf("%w: '%s', must be one of: text, json", ErrInvalidOutputFormat, format)
}

// ErrInvalidLogLevelWithDetails is a helper to create a wrapped error with the invalid level and valid options.
func ErrInvalidLogLevelWithDetails(level string) error {
	return fmt.Errorf("%w: '%s', must be one of: debug, info, warn, error", ErrInvalidLogLevel, level)
}

// ErrUnknownConfigKeyWithName creates an error for a configuration key that does not exist.
func ErrUnknownConfigKeyWithName(key string) error {
	return fmt.Errorf("%w: %s", ErrUnknownConfigKey, key)
}
