// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package export serializes a snapshot as pretty JSON or as a flat CSV sheet.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"rosetta/cli/internal/pkg/fsutil"
	"rosetta/cli/internal/pkg/json"
	"rosetta/cli/internal/snapshot"
)

// Format is an output encoding.
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	CSV   Format = "csv"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case Table, JSON, CSV:
		return f, nil
	case "":
		return Table, nil
	default:
		return "", fmt.Errorf("unknown format %q (want table, json or csv)", s)
	}
}

// CSVHeader is the first row of every CSV export.
var CSVHeader = []string{"Locale", "Name", "Description", "Keywords", "WhatsNew", "Status"}

// WriteJSON writes snap with two-space indentation.
func WriteJSON(w io.Writer, snap snapshot.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteCSV writes one row per locale in snapshot locale order.
func WriteCSV(w io.Writer, snap snapshot.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, locale := range snap.AllLocales() {
		md, _ := snap.Metadata.Get(locale)
		status := "Incomplete"
		if md.Complete() {
			status = "Complete"
		}
		if err := cw.Write([]string{locale, md.Name, md.Description, md.Keywords, md.WhatsNew, status}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ToFile writes snap to path. Table format has no file form, so the extension
// decides: .csv selects CSV, anything else JSON.
func ToFile(path string, format Format, snap snapshot.Snapshot) error {
	if format == Table || format == "" {
		format = JSON
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			format = CSV
		}
	}

	var buf bytes.Buffer
	var err error
	switch format {
	case JSON:
		err = WriteJSON(&buf, snap)
	case CSV:
		err = WriteCSV(&buf, snap)
	default:
		err = fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	if err := fsutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("export to %s: %w", path, err)
	}
	return nil
}
