// Package config holds the single configuration struct named in spec §9:
// include search paths, initial macro bindings, the macro-expansion
// recursion bound, and the strictness of unbalanced-conditional handling.
// Config documents are YAML (the same serialization library used for the
// Defs registry, see internal/defs), loaded with gopkg.in/yaml.v3 the way
// the Dingo preprocessor reference (other_examples) separates a legacy
// struct from a main, file-loadable one.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultMacroExpansionLimit is the recommended recursion/token bound
// from spec §7.3 ("recommended: 200 levels or 65,536 tokens").
const DefaultMacroExpansionLimit = 200

// DefaultMaxExpandedTokens bounds total tokens produced by one macro
// invocation's expansion, the alternate unit named alongside the depth
// bound in spec §7.3.
const DefaultMaxExpandedTokens = 65536

// Config is the preprocessor/pipeline configuration (spec §9).
type Config struct {
	IncludeSearchPaths  []string          `yaml:"includeSearchPaths"`
	InitialMacros       map[string]string `yaml:"initialMacros"`
	MacroExpansionLimit int               `yaml:"macroExpansionLimit"`
	StrictConditionals  bool              `yaml:"strictConditionals"`
}

// DefaultConfig returns a Config with spec §9's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		IncludeSearchPaths:  nil,
		InitialMacros:       make(map[string]string),
		MacroExpansionLimit: DefaultMacroExpansionLimit,
		StrictConditionals:  false,
	}
}

// Load reads a YAML config file, applying DefaultConfig for any field the
// document omits.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if cfg.MacroExpansionLimit <= 0 {
		cfg.MacroExpansionLimit = DefaultMacroExpansionLimit
	}

	if cfg.InitialMacros == nil {
		cfg.InitialMacros = make(map[string]string)
	}

	return cfg, nil
}
