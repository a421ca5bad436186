// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/cache"
	"rosetta/cli/internal/config"
	rerrors "rosetta/cli/internal/errors"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the pull cache",
}

var cacheStatusCmd = &cobra.Command{
	Use:   "status [bundle-id]",
	Short: "Show age and freshness of the cached pull",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		identity, err := bundleArg(cfg, args)
		if err != nil {
			return err
		}
		e, err := cache.New(cfg.Cache.Dir, cache.WithTTL(cfg.Cache.TTL)).Status(identity)
		if err != nil {
			return err
		}

		if !e.Exists {
			pterm.Info.Printf("No cached pull for %s\n", identity)
			return nil
		}
		state := pterm.Green("fresh")
		switch {
		case !e.Valid:
			state = pterm.Red("corrupt (ignored)")
		case !e.Fresh:
			state = pterm.Yellow("expired")
		}
		rows := pterm.TableData{
			{"Bundle id", identity},
			{"Path", e.Path},
			{"Written", e.WrittenAt.Format(time.RFC3339)},
			{"Age", e.Age.Round(time.Second).String()},
			{"TTL", cfg.Cache.TTL.String()},
			{"State", state},
		}
		if e.Valid {
			rows = append(rows,
				[]string{"Version", e.Version},
				[]string{"Locales", fmt.Sprint(e.Locales)})
		}
		return pterm.DefaultTable.WithData(rows).WithBoxed().Render()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [bundle-id]",
	Short: "Remove the cached pull so the next pull downloads again",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		identity, err := bundleArg(cfg, args)
		if err != nil {
			return err
		}
		if err := cache.New(cfg.Cache.Dir).Clear(identity); err != nil {
			return err
		}
		pterm.Success.Printf("Cache cleared for %s\n", identity)
		return nil
	},
}

// bundleArg returns the bundle id argument, falling back to app.bundle_id.
func bundleArg(cfg config.Config, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	if cfg.App.BundleID == "" {
		return "", rerrors.New(rerrors.InvalidIdentity, "no bundle id: pass one or set app.bundle_id in rosetta.yaml")
	}
	return cfg.App.BundleID, nil
}

func init() {
	cacheCmd.AddCommand(cacheStatusCmd, cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
