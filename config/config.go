// Package config loads the demo host's optional startup YAML file,
// grounded on MongooseMoo-barn's cmd/barn/main.go flag defaults but
// externalized into a file so they can be versioned and reused across
// host invocations.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Trace mirrors the demo host's -debug/-debug-filter flags.
type Trace struct {
	Enabled bool   `yaml:"enabled"`
	Filter  string `yaml:"filter"`
}

// Config is the full set of host startup parameters a YAML file may set.
// Every field has a zero-value-safe default so an absent file, or a file
// missing some keys, behaves the same as the teacher's flag defaults.
type Config struct {
	RecursionLimit int    `yaml:"recursionLimit"`
	Trace          Trace  `yaml:"trace"`
	Script         string `yaml:"script"`
}

// Default returns the configuration a host starts from absent any file
// or flag overrides, matching interp.DefaultRecursionLimit and the
// teacher's flag.Bool("trace", false, ...) / flag.String("trace-filter", "", ...).
func Default() Config {
	return Config{RecursionLimit: 1000}
}

// Load reads and parses a YAML config file at path. A missing file is not
// an error -- it returns Default() unchanged, matching a host run with no
// -config flag at all.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
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
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = Default().RecursionLimit
	}
	return cfg, nil
}
