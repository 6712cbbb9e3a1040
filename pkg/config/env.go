package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/glorpus-work/digipathos/pkg/errors"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to the upper-cased key of every setting, e.g. DIGIPATHOS_DATASET_DIR.
const EnvPrefix = "DIGIPATHOS_"

// EnvName returns the environment variable that overrides key.
// "hooks.post_extract" maps to DIGIPATHOS_HOOKS_POST_EXTRACT.
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// LoadDotEnv loads the given .env files (default ".env") into the process environment.
// Variables that are already set are not overridden and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(err, "failed to load %s", path)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values from environment variables and re-validates.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range Keys() {
		value, ok := lookup(EnvName(key))
		if !ok {
			continue
		}
		if err := c.SetValue(key, value); err != nil {
			return errors.Wrapf(err, "environment variable %s", EnvName(key))
		}
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrConfigValidation, err)
	}
	return nil
}
