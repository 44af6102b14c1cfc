// Package config loads crawl configuration files.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BenjaminSRussell/gositemap/internal/types"
	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Load returns the default configuration overlaid with the YAML file at path.
// An empty path yields the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (types.Config, error) {
	cfg := types.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user supplied config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	return cfg, nil
}
