// Package config defines the configuration types and defaults for anymacro.
package config

import (
	"errors"
	"fmt"

	"github.com/donaldgifford/anymacro/internal/cond"
	"github.com/donaldgifford/anymacro/internal/resolver"
)

// Config is the top-level configuration.
type Config struct {
	Preprocessor PreprocessorConfig `yaml:"preprocessor"`
}

// PreprocessorConfig holds all preprocessor settings.
type PreprocessorConfig struct {
	// Defines are constant macros present before the first input line.
	Defines map[string]string `yaml:"defines"`
	// IncludeDirs are searched for imports after the importing file's
	// directory.
	IncludeDirs []string `yaml:"include_dirs"`
	// MaxPasses caps macro resolution per line; 0 means unlimited.
	MaxPasses int `yaml:"max_passes"`
	// Conditionals is the conditional tracking mode, "stack" or "counter".
	Conditionals string `yaml:"conditionals"`
	// WarnUnterminated reports files that leave conditional blocks open.
	WarnUnterminated bool `yaml:"warn_unterminated"`
}

// DefaultConfig returns a Config with all default values.
func DefaultConfig() *Config {
	return &Config{
		Preprocessor: PreprocessorConfig{
			MaxPasses:        resolver.DefaultMaxPasses,
			Conditionals:     string(cond.ModeStack),
			WarnUnterminated: true,
		},
	}
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	p := c.Preprocessor
	if _, err := cond.ParseMode(p.Conditionals); err != nil {
		errs = append(errs, fmt.Errorf("preprocessor.conditionals: %w", err))
	}
	if p.MaxPasses < 0 {
		errs = append(errs, fmt.Errorf("preprocessor.max_passes: must not be negative, got %d", p.MaxPasses))
	}
	for name := range p.Defines {
		if name == "" {
			errs = append(errs, errors.New("preprocessor.defines: empty macro name"))
		}
	}
	return errors.Join(errs...)
}
