// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"rosetta/cli/internal/pkg/fsutil"
)

var _ Sink = &Disk{}

// Disk writes records under a local directory, atomically per file.
type Disk struct {
	root string
}

// NewDisk returns a sink rooted at root.
func NewDisk(root string) *Disk {
	return &Disk{root: root}
}

// Name identifies the sink in logs.
func (d *Disk) Name() string { return "disk:" + d.root }

// Path maps a key to its file.
func (d *Disk) Path(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(key))
}

// Put atomically replaces the file for key.
func (d *Disk) Put(_ context.Context, key string, data []byte) error {
	if err := fsutil.WriteFileAtomic(d.Path(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Get reads a record back.
func (d *Disk) Get(key string) ([]byte, error) {
	return os.ReadFile(d.Path(key))
}
