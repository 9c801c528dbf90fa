// Package config provides configuration management for the clifactory
// generator using Viper for flexible loading from files, environment
// variables, and command-line flags.
//
// Configuration covers the feature-analysis thresholds and complexity-score
// weights, the component library location, rendering options, and logging.
// Environment overrides use the CLIFACTORY_ prefix following the
// CLIFACTORY_<SECTION>_<OPTION> pattern.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Log        LogConfig        `yaml:"log"`
	Components ComponentsConfig `yaml:"components"`
	Features   FeaturesConfig   `yaml:"features"`
	Render     RenderConfig     `yaml:"render"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type ComponentsConfig struct {
	// Dir is the root of the component library; components live at
	// <dir>/<target>/<name>.tmpl.
	Dir string `yaml:"dir"`
	// AutoReload invalidates cached components when their files change.
	AutoReload bool `yaml:"auto_reload"`
}

// FeaturesConfig holds the feature-analysis thresholds and the
// complexity-score weights. The weights are configuration rather than
// constants because downstream reporting treats scores as comparable across
// releases; changing a weight is a documented, deliberate act.
type FeaturesConfig struct {
	// RichDescriptionThreshold is the description length above which a CLI
	// is considered to need rich text formatting.
	RichDescriptionThreshold int `yaml:"rich_description_threshold"`
	// RichCommandThreshold is the number of top-level commands above which
	// rich formatting is assumed (a UX heuristic, not a hard limit).
	RichCommandThreshold int          `yaml:"rich_command_threshold"`
	Weights              ScoreWeights `yaml:"weights"`
}

// ScoreWeights are the complexity-score weights. The score is the clamped
// weighted sum: commands*Command + maxDepth*Depth + options*Option +
// enabledFeatures*Feature, clamped to [0,100].
type ScoreWeights struct {
	Command int `yaml:"command"`
	Depth   int `yaml:"depth"`
	Option  int `yaml:"option"`
	Feature int `yaml:"feature"`
}

type RenderConfig struct {
	// Targets rendered when none are requested explicitly.
	Targets []string `yaml:"targets"`
	// Parallel renders independent targets concurrently.
	Parallel bool `yaml:"parallel"`
	// OutputDir is the base directory for generated files.
	OutputDir string `yaml:"output_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "text"},
		Components: ComponentsConfig{
			Dir:        "./components",
			AutoReload: false,
		},
		Features: FeaturesConfig{
			RichDescriptionThreshold: 120,
			RichCommandThreshold:     2,
			Weights:                  DefaultWeights(),
		},
		Render: RenderConfig{
			Targets:   []string{"python", "nodejs", "typescript", "rust"},
			Parallel:  true,
			OutputDir: "./generated",
		},
	}
}

// DefaultWeights returns the documented default score weights.
func DefaultWeights() ScoreWeights {
	return ScoreWeights{Command: 4, Depth: 8, Option: 2, Feature: 10}
}

// Load builds a Config from viper's current state, applying defaults for
// anything unset.
func Load() (*Config, error) {
	config := Default()
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Viper leaves zero values in place when keys are absent; restore the
	// defaults for numeric settings that must never be zero.
	if config.Features.RichDescriptionThreshold <= 0 {
		config.Features.RichDescriptionThreshold = 120
	}
	if config.Features.RichCommandThreshold <= 0 {
		config.Features.RichCommandThreshold = 2
	}
	if config.Features.Weights == (ScoreWeights{}) {
		config.Features.Weights = DefaultWeights()
	}
	if len(config.Render.Targets) == 0 && viper.IsSet("render.targets") {
		config.Render.Targets = viper.GetStringSlice("render.targets")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration for values the pipeline cannot work
// with.
func (c *Config) Validate() error {
	if c.Components.Dir == "" {
		return fmt.Errorf("components.dir must not be empty")
	}
	w := c.Features.Weights
	if w.Command < 0 || w.Depth < 0 || w.Option < 0 || w.Feature < 0 {
		return fmt.Errorf("features.weights must be non-negative")
	}
	if c.Features.RichDescriptionThreshold <= 0 {
		return fmt.Errorf("features.rich_description_threshold must be positive")
	}

	return nil
}
