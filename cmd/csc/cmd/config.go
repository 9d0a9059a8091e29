package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// configPath is bound to the root command's persistent --config flag.
var configPath string

// fileConfig mirrors the subset of compile flags a /config:FILE can supply
// defaults for. Any flag the user also passed on the command line still
// wins: applyConfigDefaults (compile.go) only fills in flags compile's FlagSet reports as unset.
type fileConfig struct {
	Target     string   `yaml:"target"`
	Debug      bool     `yaml:"debug"`
	Main       string   `yaml:"main"`
	Out        string   `yaml:"out"`
	References []string `yaml:"references"`
	Defines    []string `yaml:"defines"`
	XML        bool     `yaml:"xml"`
}

// loadConfig reads and parses a YAML config file; a missing configPath is
// not an error, it just means no defaults are applied.
func loadConfig() (*fileConfig, error) {
	if configPath == "" {
		return nil, nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, &usageError{fmt.Sprintf("reading config %q: %v", configPath, err)}
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &usageError{fmt.Sprintf("parsing config %q: %v", configPath, err)}
	}
	return &cfg, nil
}
