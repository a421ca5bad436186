// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/archive"
	"rosetta/cli/internal/bridge"
	"rosetta/cli/internal/keychain"
	"rosetta/cli/internal/logging"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the worker runtime, credentials and storage are ready",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}

		failed := false
		check := func(name string, err error, fix string) {
			if err == nil {
				pterm.Success.Println(name)
				return
			}
			failed = true
			pterm.Error.Printf("%s: %s\n", name, logging.PresentError("", err))
			if fix != "" {
				pterm.Println("   " + fix)
			}
		}

		_, err = bridge.Setup(bridge.RuntimeConfig{
			Interpreter:     cfg.Worker.Interpreter,
			InterpreterArgs: cfg.Worker.InterpreterArgs,
			WorkerDir:       cfg.Worker.Dir,
			CoreModule:      cfg.Worker.CoreModule,
			AIModule:        cfg.Worker.AIModule,
		})
		check("Worker runtime in "+cfg.Worker.Dir, err, "")

		km, err := keychain.GetManager()
		if err == nil {
			var c keychain.Credentials
			if c, err = km.LoadCredentials(); err == nil && !c.Complete() {
				pterm.Warning.Println("App Store Connect credentials are not in the keychain; the worker must find them in its own environment")
			}
		}
		check("Keychain", err, "")

		_, err = openStorage(cfg, logger)
		check("Storage at "+cfg.Storage.Dir, err, "Check storage.mirror in rosetta.yaml")

		if cfg.Archive.DSN != "" {
			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			arch, err := archive.Open(ctx, cfg.Archive.DSN, logger)
			cancel()
			if err == nil {
				arch.Close()
			}
			check("Archive", err, "Check archive.dsn or ROSETTA_ARCHIVE_DSN")
		}

		if failed {
			return reportedError{errDoctor}
		}
		return nil
	},
}

var errDoctor = errors.New("one or more checks failed")

func init() {
	rootCmd.AddCommand(doctorCmd)
}
