// Package cmd provides the clifactory command-line interface.
//
// Configuration is loaded with the usual precedence: command-line flags,
// then CLIFACTORY_* environment variables following the
// CLIFACTORY_<SECTION>_<OPTION> pattern, then a .clifactory.yml file in the
// working directory.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/clifactory/clifactory/internal/config"
	"github.com/clifactory/clifactory/internal/logging"
	"github.com/clifactory/clifactory/internal/pipeline"
	"github.com/clifactory/clifactory/internal/validation"
	"github.com/clifactory/clifactory/internal/version"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "clifactory",
	Short: "Generate command-line programs for several targets from one description",
	Long: `clifactory compiles a declarative CLI description into working
command-line programs for python, nodejs, typescript and rust.

The pipeline validates the description, builds a language-neutral
intermediate representation, decides which optional runtime capabilities
each target needs, and renders per-target sources from the component
library. A component gap in one target degrades that target's output
visibly; it never corrupts another target in the same run.

Quick start:
  clifactory validate cli.yml --target python
  clifactory render cli.yml --target python --target rust -o ./generated
  clifactory targets`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Accept snake_case spellings of flags so they line up with the
	// config keys (--log_level works like --log-level).
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .clifactory.yml, can also use CLIFACTORY_CONFIG_FILE)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("components-dir", "", "component library directory")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("components.dir", rootCmd.PersistentFlags().Lookup("components-dir"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("CLIFACTORY_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".clifactory")
	}

	viper.SetEnvPrefix("CLIFACTORY")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newPipeline loads configuration and wires the compilation pipeline plus
// its logger.
func newPipeline() (*pipeline.Pipeline, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})

	return pipeline.New(cfg, logger, version.Version), logger, nil
}

// loadDescription parses a CLI description file into the untyped mapping
// the pipeline consumes.
func loadDescription(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading description %s: %w", path, err)
	}
	var description map[string]any
	if err := yaml.Unmarshal(data, &description); err != nil {
		return nil, fmt.Errorf("parsing description %s: %w", path, err)
	}
	return description, nil
}

// parseMode reads the shared --mode flag.
func parseMode(cmd *cobra.Command) (validation.Mode, error) {
	raw, err := cmd.Flags().GetString("mode")
	if err != nil {
		return validation.ModeLenient, err
	}
	return validation.ParseMode(raw)
}
