package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rosetta/cli/internal/config"
	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/export"
	"rosetta/cli/internal/pipeline"
	"rosetta/cli/internal/status"
)

func TestBundleArg(t *testing.T) {
	cfg := config.Default()
	if _, err := bundleArg(cfg, nil); rerrors.KindOf(err) != rerrors.InvalidIdentity {
		t.Errorf("missing bundle id: err = %v", err)
	}
	cfg.App.BundleID = "com.example.fromconfig"
	got, err := bundleArg(cfg, nil)
	if err != nil || got != "com.example.fromconfig" {
		t.Errorf("config fallback = %q, %v", got, err)
	}
	got, _ = bundleArg(cfg, []string{"com.example.arg"})
	if got != "com.example.arg" {
		t.Errorf("argument = %q", got)
	}
}

// flagCommand mirrors the pull flags on a fresh command so Changed starts false.
func flagCommand() *cobra.Command {
	c := &cobra.Command{Use: "pull"}
	c.Flags().IntVar(&pullRetry, "retry", pipeline.DefaultRetryCount, "")
	c.Flags().StringVar(&pullFormat, "format", string(export.Table), "")
	c.Flags().DurationVar(&pullTimeout, "timeout", 0, "")
	return c
}

func TestPullOptionsPrefersFlagsOverConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Pull.Retry = 7
	cfg.Pull.Format = "json"
	cfg.Pull.Timeout = time.Minute

	c := flagCommand()
	opts, err := pullOptions(c, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.RetryCount != 7 || opts.OutputFormat != export.JSON || opts.AttemptTimeout != time.Minute {
		t.Errorf("config values not used: %+v", opts)
	}

	c = flagCommand()
	for name, v := range map[string]string{"retry": "2", "format": "csv", "timeout": "5s"} {
		if err := c.Flags().Set(name, v); err != nil {
			t.Fatal(err)
		}
	}
	opts, err = pullOptions(c, cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := pipeline.Options{RetryCount: 2, OutputFormat: export.CSV, AttemptTimeout: 5 * time.Second}
	opts.ForceRefresh, opts.ExportPath, opts.LocaleFilter = false, "", nil
	if diff := cmp.Diff(want, opts); diff != "" {
		t.Errorf("options mismatch (-want +got):\n%s", diff)
	}
}

func TestPullOptionsRejectsBadValues(t *testing.T) {
	cfg := config.Default()
	c := flagCommand()
	_ = c.Flags().Set("format", "xml")
	if _, err := pullOptions(c, cfg); rerrors.KindOf(err) != rerrors.InvalidOptions {
		t.Errorf("bad format: err = %v", err)
	}

	c = flagCommand()
	_ = c.Flags().Set("retry", "0")
	if _, err := pullOptions(c, cfg); rerrors.KindOf(err) != rerrors.InvalidOptions {
		t.Errorf("zero retry: err = %v", err)
	}
}

func TestFindConfigUsesFlag(t *testing.T) {
	old := configPath
	t.Cleanup(func() { configPath = old })

	configPath = filepath.Join(t.TempDir(), "custom.yaml")
	got, err := findConfig()
	if err != nil || got != configPath {
		t.Errorf("findConfig() = %q, %v", got, err)
	}
}

func TestEveryStageHasText(t *testing.T) {
	for _, s := range []pipeline.Stage{
		pipeline.StageValidate, pipeline.StageCache, pipeline.StageVerify, pipeline.StageFetch,
		pipeline.StageFilter, pipeline.StagePersist, pipeline.StageArchive, pipeline.StageExport,
	} {
		if stageText[s] == "" {
			t.Errorf("stage %q has no text", s)
		}
	}
}

func TestReportedError(t *testing.T) {
	base := rerrors.New(rerrors.AccessDenied, "no access")
	err := fmt.Errorf("pull: %w", reportedError{base})
	if !isReported(err) {
		t.Error("wrapped reportedError not detected")
	}
	if rerrors.KindOf(err) != rerrors.AccessDenied {
		t.Errorf("kind lost: %v", rerrors.KindOf(err))
	}
	if isReported(errors.New("plain")) {
		t.Error("plain error reported")
	}
}

func TestVersionRowsDetail(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	v := status.Version{VersionString: "2.0.0", AppStoreState: "IN_REVIEW", CreatedDate: "2024-05-01", Downloadable: true}
	labels := func(rows [][]string) []string {
		var out []string
		for _, r := range rows {
			out = append(out, r[0])
		}
		return out
	}

	brief := versionRows(v, false)
	if diff := cmp.Diff([]string{"Current version", "State", "Status", "Localization"}, labels(brief)); diff != "" {
		t.Errorf("brief rows (-want +got):\n%s", diff)
	}
	if got := brief[3][1]; got != "Localization editing not recommended" {
		t.Errorf("in review localization = %q", got)
	}

	detailed := versionRows(v, true)
	if diff := cmp.Diff([]string{"Current version", "State", "Status", "Created", "Downloadable", "Localization"}, labels(detailed)); diff != "" {
		t.Errorf("detailed rows (-want +got):\n%s", diff)
	}
}

func TestWorkerCommandFlags(t *testing.T) {
	tests := map[*cobra.Command][]string{
		statusCmd: {"all-versions", "detailed"},
		costCmd:   {"locales", "source"},
	}
	for c, flags := range tests {
		for _, name := range flags {
			if c.Flags().Lookup(name) == nil {
				t.Errorf("%s has no --%s flag", c.Name(), name)
			}
		}
	}
}
