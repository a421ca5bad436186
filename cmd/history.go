// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/archive"
	"rosetta/cli/internal/export"
)

var (
	historyLimit int
	historyShow  string
)

var historyCmd = &cobra.Command{
	Use:   "history [bundle-id]",
	Short: "List pulls recorded in the Postgres archive",
	Long: `Lists archived pulls for an app, newest first. Requires archive.dsn in
rosetta.yaml or ROSETTA_ARCHIVE_DSN.

With --show RUN_ID the archived snapshot of that run is printed as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Archive.DSN == "" {
			return errors.New("no archive configured: set archive.dsn in rosetta.yaml or ROSETTA_ARCHIVE_DSN")
		}
		arch, err := archive.Open(cmd.Context(), cfg.Archive.DSN, logger)
		if err != nil {
			return err
		}
		defer arch.Close()

		if historyShow != "" {
			snap, err := arch.Load(cmd.Context(), historyShow)
			if err != nil {
				return err
			}
			return export.WriteJSON(cmd.OutOrStdout(), snap)
		}

		identity, err := bundleArg(cfg, args)
		if err != nil {
			return err
		}
		entries, err := arch.History(cmd.Context(), identity, historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Info.Printf("No archived pulls for %s\n", identity)
			return nil
		}

		rows := pterm.TableData{{"Run", "Fetched", "Version", "Locales"}}
		for _, e := range entries {
			rows = append(rows, []string{
				e.RunID,
				e.FetchedAt.Local().Format(time.DateTime),
				e.Version,
				fmt.Sprintf("%d (%s)", len(e.Locales), strings.Join(e.Locales, ", ")),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "Print the archived snapshot of one run")
}
