package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/themis/pkg/cli"
	"mercator-hq/themis/pkg/config"
	"mercator-hq/themis/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "themis",
	Short: "Themis - embeddable policy evaluation runtime",
	Long: `Themis is a policy evaluation runtime built around a versioned policy
store and per-caller cached evaluators.

Policies are validated before activation, so a broken policy never
displaces a working one. Evaluations run against cached compiled
evaluators that rebuild automatically when the active policy changes.

For more information, visit: https://github.com/mercator-hq/themis`,
	Version: Version,
}

// Execute runs the root command. The command context is cancelled on
// SIGINT or SIGTERM.
func Execute() {
	if err := rootCmd.ExecuteContext(cli.SetupSignalHandler()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// setupLogging configures the process-wide logger from the config file,
// when one is given, with --verbose forcing debug level.
func setupLogging(cfg *config.Config) error {
	lcfg := logging.DefaultConfig()
	if cfg != nil {
		lcfg.Level = cfg.Logging.Level
		lcfg.Format = cfg.Logging.Format
		lcfg.AddSource = cfg.Logging.AddSource
	}
	if verbose {
		lcfg.Level = "debug"
	}

	logger, err := logging.New(lcfg)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}

// loadConfigFile loads the config file named by --config, or returns nil
// when the flag is unset.
func loadConfigFile() (*config.Config, error) {
	if cfgFile == "" {
		return nil, nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}
