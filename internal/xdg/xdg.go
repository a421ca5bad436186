// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xdg resolves XDG Base Directory paths for rosetta, falling back to
// the conventional locations under the home directory when the XDG variables
// are unset.
package xdg

import (
	"os"
	"path/filepath"
)

const app = "rosetta"

// ConfigDir returns $XDG_CONFIG_HOME/rosetta (default ~/.config/rosetta),
// created with private permissions.
func ConfigDir() (string, error) {
	return dir("XDG_CONFIG_HOME", 0o700, ".config")
}

// StateDir returns $XDG_STATE_HOME/rosetta (default ~/.local/state/rosetta),
// created with private permissions.
func StateDir() (string, error) {
	return dir("XDG_STATE_HOME", 0o700, ".local", "state")
}

// CacheDir returns $XDG_CACHE_HOME/rosetta (default ~/.cache/rosetta).
// The directory is not created; the cache creates entries on first write.
func CacheDir() (string, error) {
	return dir("XDG_CACHE_HOME", 0, ".cache")
}

func dir(env string, perm os.FileMode, fallback ...string) (string, error) {
	base := os.Getenv(env)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	d := filepath.Join(base, app)
	if perm != 0 {
		if err := os.MkdirAll(d, perm); err != nil {
			return "", err
		}
	}
	return d, nil
}
