// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd implements the rosetta command line: pulling App Store
// metadata through the Node.js worker, and managing the cache, credentials
// and archive around it.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"rosetta/cli/internal/config"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/metrics"
	"rosetta/cli/internal/xdg"
)

var (
	showVersion bool
	configPath  string
	verbose     bool
	logLevel    string
	metricsFile string
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:           "rosetta",
	Short:         "Pull and localize App Store Connect metadata",
	Long:          `Rosetta downloads App Store metadata for every locale of an app, caches it, and keeps a per-locale copy on disk.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("rosetta %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// sharedMetrics is created lazily by commands that record anything.
var sharedMetrics *metrics.Metrics

func commandMetrics() *metrics.Metrics {
	if sharedMetrics == nil {
		sharedMetrics = metrics.New()
	}
	return sharedMetrics
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if metricsFile != "" && sharedMetrics != nil {
		if werr := sharedMetrics.WriteFile(metricsFile); werr != nil {
			fmt.Fprintln(os.Stderr, logging.PresentError("write metrics", werr))
		}
	}
	if err != nil {
		if !isReported(err) {
			fmt.Fprintln(os.Stderr, logging.PresentError("", err))
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to rosetta.yaml (default ./rosetta.yaml, then the user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output, including worker diagnostics")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics for this run to a file")
}

// loadConfig resolves the config file and returns it with a logger at the
// effective level: --verbose wins over --log-level, which wins over the file.
func loadConfig() (config.Config, logging.Logger, error) {
	path, err := findConfig()
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if verbose {
		level = "debug"
	}
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		return cfg, nil, err
	}
	cfg.LogLevel = level
	logger := logging.NewLogger(lvl)
	logger.Debugf("config: %s", path)
	return cfg, logger, nil
}

func findConfig() (string, error) {
	if configPath != "" {
		return filepath.Abs(configPath)
	}
	local, err := filepath.Abs(config.DefaultFile)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}
	dir, err := xdg.ConfigDir()
	if err != nil {
		return local, nil
	}
	global := filepath.Join(dir, config.DefaultFile)
	if _, err := os.Stat(global); errors.Is(err, os.ErrNotExist) {
		return local, nil
	}
	return global, nil
}
