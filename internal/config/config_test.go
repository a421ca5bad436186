package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "xdg"))
	for _, k := range []string{"ROSETTA_WORKER_DIR", "ROSETTA_CACHE_DIR", "ROSETTA_STORAGE_DIR", "ROSETTA_ARCHIVE_DSN", "ROSETTA_DEBUG"} {
		t.Setenv(k, "")
	}

	c, err := Load(filepath.Join(dir, DefaultFile))
	if err != nil {
		t.Fatal(err)
	}
	if c.Pull.Retry != 3 || c.Pull.Format != "table" || c.Cache.TTL != time.Hour {
		t.Errorf("defaults = %+v", c.Pull)
	}
	if c.Worker.Dir != filepath.Join(dir, "js") {
		t.Errorf("worker dir = %s", c.Worker.Dir)
	}
	if c.Cache.Dir != filepath.Join(dir, "xdg", "rosetta") {
		t.Errorf("cache dir = %s", c.Cache.Dir)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	body := `
app:
  bundle_id: com.example.demo
  default_locale: en-US
  target_locales: [zh-Hans, ja]
worker:
  interpreter: node
  dir: worker
  core_module: asc.js
  ai_module: ai.js
cache:
  dir: /var/cache/rosetta
  ttl: 30m
storage:
  dir: out
  mirror:
    kind: s3
    bucket: metadata
    endpoint: s3.amazonaws.com
pull:
  retry: 5
  format: csv
  timeout: 45s
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ROSETTA_ARCHIVE_DSN", "postgres://u:p@localhost/db")
	t.Setenv("ROSETTA_DEBUG", "1")
	t.Setenv("ROSETTA_WORKER_DIR", "")
	t.Setenv("ROSETTA_CACHE_DIR", "")
	t.Setenv("ROSETTA_STORAGE_DIR", "")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"zh-Hans", "ja"}, c.App.TargetLocales); diff != "" {
		t.Errorf("target locales (-want +got):\n%s", diff)
	}
	if c.Worker.Dir != filepath.Join(dir, "worker") || c.Storage.Dir != filepath.Join(dir, "out") {
		t.Errorf("relative dirs not resolved: %s %s", c.Worker.Dir, c.Storage.Dir)
	}
	if c.Cache.Dir != "/var/cache/rosetta" || c.Cache.TTL != 30*time.Minute {
		t.Errorf("cache = %+v", c.Cache)
	}
	if c.Pull.Retry != 5 || c.Pull.Format != "csv" || c.Pull.Timeout != 45*time.Second {
		t.Errorf("pull = %+v", c.Pull)
	}
	if c.Storage.Mirror.Kind != "s3" || c.Storage.Mirror.Bucket != "metadata" {
		t.Errorf("mirror = %+v", c.Storage.Mirror)
	}
	if c.Archive.DSN == "" || c.LogLevel != "debug" {
		t.Errorf("env overrides not applied: %+v", c)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	for _, body := range []string{"pull:\n  retry: 0\n", "pull:\n  format: xml\n", "storage:\n  mirror:\n    kind: gcs\n", "app: ["} {
		if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("accepted %q", body)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFile)
	c := Default()
	c.App.BundleID = "com.example.saved"
	c.Cache.Dir = filepath.Join(dir, "cache")
	if err := Save(path, c); err != nil {
		t.Fatal(err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v", st.Mode().Perm())
	}
	t.Setenv("ROSETTA_DEBUG", "")
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.App.BundleID != "com.example.saved" {
		t.Errorf("bundle id = %q", got.App.BundleID)
	}
}
