// Package config loads the CLI's optional .natrixrc.yaml, letting a
// project pin execution defaults (which engine to default to, whether
// to color diagnostics) without repeating flags on every invocation.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full set of settings .natrixrc.yaml may override.
type Config struct {
	// Engine selects the default execution path when neither --ast nor
	// --bc is given on the command line: "bc" (the default) or "ast".
	Engine string `yaml:"engine"`
	// Color forces diagnostic coloring on or off, overriding the
	// terminal auto-detection in internal/diagcolor.
	Color *bool `yaml:"color"`
}

// Default returns the configuration used when no .natrixrc.yaml is
// present.
func Default() Config {
	return Config{Engine: "bc"}
}

// Load reads and parses path. A missing file is not an error; it
// yields Default() so the CLI works with zero configuration.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}
