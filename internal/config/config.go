// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package config loads the per-project rosetta.yaml.
// Only non-secret settings are kept here; worker credentials go to the OS keychain.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"rosetta/cli/internal/storage"
	"rosetta/cli/internal/xdg"
)

// DefaultFile is the project config file name.
const DefaultFile = "rosetta.yaml"

// Config holds project settings.
type Config struct {
	LogLevel string        `yaml:"log_level,omitempty"`
	App      AppConfig     `yaml:"app"`
	Worker   WorkerConfig  `yaml:"worker"`
	Cache    CacheConfig   `yaml:"cache"`
	Storage  StorageConfig `yaml:"storage"`
	Archive  ArchiveConfig `yaml:"archive,omitempty"`
	Pull     PullConfig    `yaml:"pull"`
}

type AppConfig struct {
	BundleID      string   `yaml:"bundle_id,omitempty"`
	DefaultLocale string   `yaml:"default_locale,omitempty"`
	TargetLocales []string `yaml:"target_locales,omitempty"`
}

// WorkerConfig locates the interpreter and the worker bundle.
type WorkerConfig struct {
	Interpreter     string   `yaml:"interpreter"`
	InterpreterArgs []string `yaml:"interpreter_args,omitempty"`
	Dir             string   `yaml:"dir"`
	CoreModule      string   `yaml:"core_module"`
	AIModule        string   `yaml:"ai_module"`
}

type CacheConfig struct {
	Dir string        `yaml:"dir,omitempty"`
	TTL time.Duration `yaml:"ttl"`
}

type StorageConfig struct {
	Dir    string               `yaml:"dir"`
	Mirror storage.MirrorConfig `yaml:"mirror,omitempty"`
}

type ArchiveConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

type PullConfig struct {
	Retry   int           `yaml:"retry"`
	Format  string        `yaml:"format"`
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Worker: WorkerConfig{
			Interpreter:     "node",
			InterpreterArgs: []string{"--input-type=module"},
			Dir:             "js",
			CoreModule:      "dist/asc.js",
			AIModule:        "dist/openai-service.js",
		},
		Cache:   CacheConfig{TTL: time.Hour},
		Storage: StorageConfig{Dir: "."},
		Pull:    PullConfig{Retry: 3, Format: "table"},
	}
}

// Load reads path; a missing file yields defaults. Relative directories are
// resolved against the directory holding the file, and environment overrides
// are applied last.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return c, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	c.resolve(filepath.Dir(path))
	c.applyEnv(os.Getenv)
	if c.Cache.Dir == "" {
		dir, err := xdg.CacheDir()
		if err != nil {
			dir = filepath.Join(filepath.Dir(path), ".rosetta-cache")
		}
		c.Cache.Dir = dir
	}
	return c, c.Validate()
}

// Save writes configuration with 0600 permissions.
func Save(path string, c Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

// Validate rejects settings no command can run with.
func (c Config) Validate() error {
	if c.Pull.Retry < 1 {
		return fmt.Errorf("pull.retry must be at least 1, got %d", c.Pull.Retry)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache.ttl must be positive")
	}
	switch c.Pull.Format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("pull.format must be table, json or csv, got %q", c.Pull.Format)
	}
	switch c.Storage.Mirror.Kind {
	case "", "none", "s3", "azure":
	default:
		return fmt.Errorf("storage.mirror.kind must be none, s3 or azure, got %q", c.Storage.Mirror.Kind)
	}
	return nil
}

func (c *Config) resolve(base string) {
	for _, p := range []*string{&c.Worker.Dir, &c.Storage.Dir, &c.Cache.Dir} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("ROSETTA_WORKER_DIR"); v != "" {
		c.Worker.Dir = v
	}
	if v := getenv("ROSETTA_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := getenv("ROSETTA_STORAGE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := getenv("ROSETTA_ARCHIVE_DSN"); v != "" {
		c.Archive.DSN = v
	}
	if isTrue(getenv("ROSETTA_DEBUG")) {
		c.LogLevel = "debug"
	}
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
