// Package cmd provides the bundlegen command-line interface.
//
// Configuration sources, highest priority first:
//  1. Command-line flags (--input, --minify, etc.)
//  2. Environment variables with the BUNDLE_ prefix
//     (BUNDLE_DART_SASS_BINARY, BUNDLE_CACHE_DIR, ...)
//  3. Tool config file (.bundlegen.yml in the current directory, or
//     the path given with --config)
//
// Build inputs themselves come from the bundle manifest (bundle.yaml
// by default), which is separate from the tool config: the manifest
// describes what to bundle, the tool config how the tool behaves.
package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bundlegen/bundlegen/internal/logging"
)

var (
	cfgFile string
	log     logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "bundlegen",
	Short: "Manifest-driven JS and CSS bundler with an LTS version ledger",
	Long: `Bundlegen reads a declarative manifest of JavaScript, TypeScript,
hyperscript and CSS/SCSS sources, transforms each entry into plain JS
or CSS, and concatenates the results in manifest order into a single
bundle per family.

Quick Start:
  bundlegen build                 Build the JS and CSS bundles
  bundlegen build js --files ...  Build only JS, overriding the manifest
  bundlegen watch                 Rebuild on source changes
  bundlegen publish --minor       Publish an LTS release to the ledger
  bundlegen list                  List published versions`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = newLogger(cmd)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "tool config file (default is .bundlegen.yml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log per-entry progress and compiler fallback attempts")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log-format", rootCmd.PersistentFlags().Lookup("log-format"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".bundlegen")
	}

	viper.SetEnvPrefix("BUNDLE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// A missing config file is fine; flags and env still apply.
	_ = viper.ReadInConfig()
}

// newLogger builds the command logger from the persistent flags.
// Verbose forces debug level regardless of --log-level.
func newLogger(cmd *cobra.Command) logging.Logger {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := logging.ParseLevel(viper.GetString("log-level"))
	cfg := &logging.Config{
		Level:   level,
		Format:  viper.GetString("log-format"),
		Output:  os.Stderr,
		Verbose: verbose,
	}
	return logging.New(cfg)
}
