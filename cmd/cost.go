// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/cache"
	"rosetta/cli/internal/estimate"
	"rosetta/cli/internal/export"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/pipeline"
)

var (
	costLocales []string
	costSource  string
)

var costCmd = &cobra.Command{
	Use:   "cost [bundle-id]",
	Short: "Estimate what translating the current metadata would cost",
	Long: `The cost command pulls the app's metadata (from the cache when it is fresh)
and asks the AI worker module for a token and price estimate of translating the
source locale into the target locales.

Targets come from --locales, then app.target_locales, then every other locale
of the app.`,
	Example: `  rosetta cost
  rosetta cost com.example.app --locales ja,zh-Hans`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		identity, err := bundleArg(cfg, args)
		if err != nil {
			return err
		}

		m := commandMetrics()
		br, err := openBridge(cfg, logger, m.ObserveBridge)
		if err != nil {
			fmt.Fprintln(os.Stderr, logging.FormatPullError(err))
			return reportedError{err}
		}
		store, err := openStorage(cfg, logger)
		if err != nil {
			return err
		}
		cacheStore := cache.New(cfg.Cache.Dir,
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithLogger(logger),
			cache.WithObserver(m.ObserveCache))

		opts := pipeline.Options{RetryCount: cfg.Pull.Retry, OutputFormat: export.Table, AttemptTimeout: cfg.Pull.Timeout}
		res, err := pipeline.New(br, cacheStore, store, pipeline.WithLogger(logger)).Run(cmd.Context(), identity, opts)
		if err != nil && res == nil {
			fmt.Fprintln(os.Stderr, logging.FormatPullError(err))
			return reportedError{err}
		}
		if err != nil {
			logger.Warnf("%s", logging.PresentError("", err))
		}

		source := costSource
		if source == "" {
			source = cfg.App.DefaultLocale
		}
		targets := costLocales
		if len(targets) == 0 {
			targets = cfg.App.TargetLocales
		}
		req, err := estimate.NewRequest(res.Snapshot, source, targets)
		if err != nil {
			return err
		}
		est, err := estimate.Fetch(cmd.Context(), br, req)
		if err != nil {
			fmt.Fprintln(os.Stderr, logging.FormatPullError(err))
			return reportedError{err}
		}

		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Source locale", req.SourceLocale},
			{"Target locales", fmt.Sprintf("%d", len(req.TargetLocales))},
			{"Tokens", fmt.Sprintf("%d", est.TokenEstimate)},
			{"Estimated cost", fmt.Sprintf("$%.4f", est.EstimatedCost)},
			{"With retries", fmt.Sprintf("$%.4f", est.EstimatedCost*1.5)},
		}).WithBoxed().Render()
	},
}

func init() {
	costCmd.Flags().StringSliceVarP(&costLocales, "locales", "l", nil, "target locales (default: app.target_locales)")
	costCmd.Flags().StringVar(&costSource, "source", "", "source locale (default: app.default_locale, then the app's default)")
	rootCmd.AddCommand(costCmd)
}
