// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/logging"
	"rosetta/cli/internal/status"
)

var (
	statusAllVersions bool
	statusDetailed    bool
)

var statusCmd = &cobra.Command{
	Use:   "status [bundle-id]",
	Short: "Show the App Store version state and whether localizations can be edited",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		identity, err := bundleArg(cfg, args)
		if err != nil {
			return err
		}

		br, err := openBridge(cfg, logger, commandMetrics().ObserveBridge)
		if err != nil {
			fmt.Fprintln(os.Stderr, logging.FormatPullError(err))
			return reportedError{err}
		}

		ctx := cmd.Context()
		if cfg.Pull.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, cfg.Pull.Timeout)
			defer cancel()
		}
		spinner, _ := pterm.DefaultSpinner.WithWriter(os.Stderr).WithRemoveWhenDone(true).
			Start("Fetching version information...")
		report, err := status.Fetch(ctx, br, identity)
		if spinner != nil {
			_ = spinner.Stop()
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, logging.FormatPullError(err))
			return reportedError{err}
		}

		if err := renderStatus(report, statusAllVersions, statusDetailed); err != nil {
			return err
		}
		renderAdvice(report)
		return nil
	},
}

func renderStatus(r status.Report, all, detailed bool) error {
	pterm.DefaultSection.Println("App Store Connect App Status")
	rows := pterm.TableData{{"App", r.AppName}, {"Bundle id", r.BundleID}}
	if r.CurrentVersion != nil {
		rows = append(rows, versionRows(*r.CurrentVersion, detailed)...)
	}
	if err := pterm.DefaultTable.WithData(rows).WithBoxed().Render(); err != nil {
		return err
	}

	if !all || len(r.AllVersions) == 0 {
		return nil
	}
	pterm.DefaultSection.WithLevel(2).Println("Version history")
	history := pterm.TableData{{"Version", "State", "Editable"}}
	for _, v := range r.AllVersions {
		a := status.Assess(v.AppStoreState)
		history = append(history, []string{v.VersionString, v.AppStoreState, toneText(a.Tone, editableText(a.Editable))})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(history).Render()
}

func versionRows(v status.Version, detailed bool) [][]string {
	a := status.Assess(v.AppStoreState)
	rows := [][]string{
		{"Current version", v.VersionString},
		{"State", v.AppStoreState},
		{"Status", toneText(a.Tone, a.Label)},
	}
	if detailed {
		if v.CreatedDate != "" {
			rows = append(rows, []string{"Created", v.CreatedDate})
		}
		if v.ReviewType != "" {
			rows = append(rows, []string{"Review type", v.ReviewType})
		}
		if v.ReleaseType != "" {
			rows = append(rows, []string{"Release type", v.ReleaseType})
		}
		rows = append(rows, []string{"Downloadable", editableText(v.Downloadable)})
	}
	if a.Editable {
		rows = append(rows, []string{"Localization", pterm.Green("Safe to proceed with localization work")})
	} else {
		rows = append(rows, []string{"Localization", pterm.Red("Localization editing not recommended")})
	}
	return rows
}

func renderAdvice(r status.Report) {
	advice, ok := status.Recommend(r)
	if !ok {
		return
	}
	pterm.DefaultSection.Println("Workflow recommendations")
	switch advice.Tone {
	case status.ToneOK:
		pterm.Success.Println(advice.Headline)
	case status.ToneStop:
		pterm.Error.Println(advice.Headline)
	default:
		pterm.Warning.Println(advice.Headline)
	}
	items := make([]pterm.BulletListItem, 0, len(advice.Steps))
	for _, s := range advice.Steps {
		items = append(items, pterm.BulletListItem{Level: 1, Text: s})
	}
	_ = pterm.DefaultBulletList.WithItems(items).Render()
	pterm.Info.Println("Run rosetta status --all-versions --detailed before starting localization work")
}

func toneText(t status.Tone, s string) string {
	switch t {
	case status.ToneOK:
		return pterm.Green(s)
	case status.ToneCaution, status.ToneUnknown:
		return pterm.Yellow(s)
	default:
		return pterm.Red(s)
	}
}

func editableText(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	statusCmd.Flags().BoolVar(&statusAllVersions, "all-versions", false, "also list earlier versions")
	statusCmd.Flags().BoolVar(&statusDetailed, "detailed", false, "show creation date, review and release type")
	rootCmd.AddCommand(statusCmd)
}
