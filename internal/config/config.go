// Package config loads compiler options from an optional YAML file
// (funxyc.yaml) per §4.10, with defaults matching §5. CLI flags are
// expected to override whatever a file sets; this package only knows how
// to produce the file-and-default layer, leaving flag precedence to the
// driver.
package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/typeforge/tfc/internal/evalc"
)

// FileName is the conventional config file name searched for in the
// current directory when no explicit path is given.
const FileName = "funxyc.yaml"

// Config holds every compiler option §4.10 names.
type Config struct {
	// Fuel is the evaluator's step budget. Defaults to evalc.DefaultFuel.
	Fuel int `yaml:"fuel"`
	// Color forces diagnostic colorization on or off; nil defers to the
	// driver's isatty check.
	Color *bool `yaml:"color"`
	// CacheEnabled turns the cluster cache (internal/clustercache) on.
	CacheEnabled bool `yaml:"cacheEnabled"`
	// CachePath is the sqlite file the cluster cache persists to.
	CachePath string `yaml:"cachePath"`
}

// Default returns the configuration used when no file is present and no
// flags override it.
func Default() Config {
	return Config{
		Fuel:         evalc.DefaultFuel,
		CacheEnabled: true,
		CachePath:    ".funxy-cache.sqlite",
	}
}

// Load reads path (or FileName if path is empty) and merges it over
// Default(). A missing file is not an error: it simply yields the
// defaults, matching "(fuel budget...) loaded from an optional YAML
// file". A present-but-malformed file is reported, since the user
// evidently intended to configure something and silently ignoring a
// typo would be surprising.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = FileName
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
