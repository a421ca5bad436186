// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/archive"
	"rosetta/cli/internal/bridge"
	"rosetta/cli/internal/cache"
	"rosetta/cli/internal/config"
	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/export"
	"rosetta/cli/internal/formatter"
	"rosetta/cli/internal/keychain"
	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/pipeline"
	"rosetta/cli/internal/storage"
)

var (
	pullForce   bool
	pullRetry   int
	pullFormat  string
	pullExport  string
	pullLocales []string
	pullTimeout time.Duration
)

// pullCmd downloads App Store metadata for one app.
var pullCmd = &cobra.Command{
	Use:   "pull [bundle-id]",
	Short: "Download App Store metadata for every locale",
	Long: `The pull command downloads the current App Store metadata of an app through
the Node.js worker and stores one file per locale under <bundle-id>/current/.

A copy fetched within the last hour is served from the cache unless --force is
given. Downloads are retried with exponential backoff (1s, 2s, 4s, ...).`,
	Example: `  rosetta pull com.example.app
  rosetta pull --force --locales en-US,zh-Hans
  rosetta pull --format json > metadata.json
  rosetta pull --export metadata.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		identity := cfg.App.BundleID
		if len(args) == 1 {
			identity = args[0]
		}
		if identity == "" {
			return rerrors.New(rerrors.InvalidIdentity, "no bundle id: pass one or set app.bundle_id in rosetta.yaml")
		}

		opts, err := pullOptions(cmd, cfg)
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
		popts := []pipeline.Option{pipeline.WithLogger(logger)}
		if cfg.Archive.DSN != "" {
			arch, err := archive.Open(cmd.Context(), cfg.Archive.DSN, logger)
			if err != nil {
				logger.Warnf("archive disabled: %s", logging.PresentError("", err))
			} else {
				defer arch.Close()
				popts = append(popts, pipeline.WithArchive(arch))
			}
		}

		progress := newPullProgress(logger, m, !verbose)
		defer progress.stop()
		popts = append(popts, pipeline.WithReporter(progress))

		cacheStore := cache.New(cfg.Cache.Dir,
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithLogger(logger),
			cache.WithObserver(m.ObserveCache))
		p := pipeline.New(br, cacheStore, store, popts...)

		res, err := p.Run(cmd.Context(), identity, opts)
		progress.stop()
		if res != nil {
			source := "remote"
			if res.FromCache {
				source = "cache"
			}
			m.ObservePull(source, res.Elapsed)
			if werr := writePullResult(res, opts.OutputFormat); werr != nil && err == nil {
				err = werr
			}
		}
		if err != nil {
			pterm.Println()
			fmt.Fprintln(os.Stderr, logging.FormatPullError(err))
			return reportedError{err}
		}
		return nil
	},
}

func pullOptions(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	retry := cfg.Pull.Retry
	if cmd.Flags().Changed("retry") {
		retry = pullRetry
	}
	timeout := cfg.Pull.Timeout
	if cmd.Flags().Changed("timeout") {
		timeout = pullTimeout
	}
	format := cfg.Pull.Format
	if cmd.Flags().Changed("format") {
		format = pullFormat
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return pipeline.Options{}, rerrors.Wrap(rerrors.InvalidOptions, "--format", err)
	}
	opts := pipeline.Options{
		ForceRefresh:   pullForce,
		RetryCount:     retry,
		OutputFormat:   f,
		ExportPath:     pullExport,
		LocaleFilter:   pullLocales,
		AttemptTimeout: timeout,
	}
	return opts, opts.Validate()
}

// openBridge verifies the worker runtime and attaches the stored credentials.
func openBridge(cfg config.Config, logger logging.Logger, observe bridge.Observer) (bridge.Bridge, error) {
	rt, err := bridge.Setup(bridge.RuntimeConfig{
		Interpreter:     cfg.Worker.Interpreter,
		InterpreterArgs: cfg.Worker.InterpreterArgs,
		WorkerDir:       cfg.Worker.Dir,
		CoreModule:      cfg.Worker.CoreModule,
		AIModule:        cfg.Worker.AIModule,
	})
	if err != nil {
		return nil, err
	}

	debug := cfg.LogLevel == "debug"
	opts := []bridge.Option{
		bridge.WithLogger(logger),
		bridge.WithObserver(observe),
		bridge.WithDebug(debug),
	}
	if km, err := keychain.GetManager(); err != nil {
		logger.Debugf("keychain unavailable: %v", err)
	} else if creds, err := km.LoadCredentials(); err != nil {
		logger.Warnf("could not read stored credentials: %v", err)
	} else {
		if !creds.Complete() {
			logger.Debugf("stored credentials incomplete; the worker falls back to its own environment")
		}
		opts = append(opts, bridge.WithEnv(creds.Env()...))
	}
	if debug {
		opts = append(opts, bridge.WithEnv("ROSETTA_DEBUG_JS=1"))
	}
	return bridge.New(rt, opts...), nil
}

func openStorage(cfg config.Config, logger logging.Logger) (*storage.Store, error) {
	sopts := []storage.Option{storage.WithLogger(logger)}
	mirror, err := storage.NewMirror(logger, cfg.Storage.Mirror)
	if err != nil {
		return nil, rerrors.Wrap(rerrors.StorageFault, "configure storage mirror", err)
	}
	if mirror != nil {
		sopts = append(sopts, storage.WithMirror(mirror))
	}
	return storage.NewStore(storage.NewDisk(cfg.Storage.Dir), sopts...), nil
}

func writePullResult(res *pipeline.Result, format export.Format) error {
	snap := res.Snapshot
	switch format {
	case export.JSON:
		return export.WriteJSON(os.Stdout, snap)
	case export.CSV:
		return export.WriteCSV(os.Stdout, snap)
	}

	source := "App Store Connect"
	if res.FromCache {
		source = "cache (use --force to refresh)"
	}
	pterm.Success.Printf("%s %s: %d locales from %s\n", snap.AppID, snap.AppVersion, len(snap.AllLocales()), source)
	if err := formatter.Render(os.Stdout, snap); err != nil {
		return err
	}
	if res.ExportedTo != "" {
		pterm.Info.Printf("Exported to %s\n", res.ExportedTo)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(pullCmd)
	pullCmd.Flags().BoolVarP(&pullForce, "force", "f", false, "Ignore the cache and download again")
	pullCmd.Flags().IntVarP(&pullRetry, "retry", "r", pipeline.DefaultRetryCount, "Maximum download attempts")
	pullCmd.Flags().StringVar(&pullFormat, "format", string(export.Table), "Output format: table, json or csv")
	pullCmd.Flags().StringVarP(&pullExport, "export", "o", "", "Also write the result to a .json or .csv file")
	pullCmd.Flags().StringSliceVarP(&pullLocales, "locales", "l", nil, "Only keep these locales (comma separated)")
	pullCmd.Flags().DurationVar(&pullTimeout, "timeout", 0, "Per-call worker timeout, 0 for none")
}

