// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package formatter renders snapshots as terminal tables.
package formatter

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/pterm/pterm"

	"rosetta/cli/internal/snapshot"
)

// WrapWidth is the column at which long field values wrap.
const WrapWidth = 60

// App Store limits checked by the completeness table.
const (
	MaxKeywords    = 100
	MaxDescription = 4000
)

// OrderedLocales returns the default locale first, then the rest sorted.
func OrderedLocales(snap snapshot.Snapshot) []string {
	locales := snap.AllLocales()
	slices.Sort(locales)
	if i := slices.Index(locales, snap.DefaultLocale); i > 0 {
		locales = append([]string{snap.DefaultLocale}, slices.Delete(locales, i, i+1)...)
	}
	return locales
}

// Render writes the overview, one field table per locale and the completeness table.
func Render(w io.Writer, snap snapshot.Snapshot) error {
	fmt.Fprintf(w, "App: %s", snap.AppID)
	if snap.AppVersion != "" {
		fmt.Fprintf(w, " (version %s)", snap.AppVersion)
	}
	fmt.Fprintf(w, "\nLocales: %s\n\n", strings.Join(snap.Locales, ", "))

	for _, locale := range OrderedLocales(snap) {
		md, _ := snap.Metadata.Get(locale)
		title := locale
		if locale == snap.DefaultLocale {
			title += " (default)"
		}
		fmt.Fprintln(w, pterm.Bold.Sprint(title))
		out, err := LocaleTable(md)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
	}

	out, err := CompletenessTable(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// LocaleTable renders one locale's fields as a two-column table.
func LocaleTable(md snapshot.LocaleMetadata) (string, error) {
	data := pterm.TableData{{"Field", "Value"}}
	for _, f := range []struct{ label, value string }{
		{"Name", md.Name},
		{"Subtitle", md.Subtitle},
		{"Description", md.Description},
		{"Keywords", md.Keywords},
		{"What's New", md.WhatsNew},
		{"Promotional Text", md.PromotionalText},
		{"Marketing URL", md.MarketingURL},
		{"Support URL", md.SupportURL},
	} {
		if f.value == "" {
			continue
		}
		data = append(data, []string{f.label, Wrap(f.value, WrapWidth)})
	}
	if len(data) == 1 {
		data = append(data, []string{"-", pterm.Gray("no metadata")})
	}
	return pterm.DefaultTable.WithHasHeader().WithBoxed().WithData(data).Srender()
}

// Check summarizes how complete one locale is.
type Check struct {
	Filled         int
	KeywordsLen    int
	DescriptionLen int
	Problems       []string
}

// Status is OK, Incomplete or Invalid.
func (c Check) Status() string {
	switch {
	case len(c.Problems) > 0:
		return "Invalid"
	case c.Filled < 5:
		return "Incomplete"
	default:
		return "OK"
	}
}

// Inspect counts the five text fields and checks App Store length limits.
func Inspect(md snapshot.LocaleMetadata) Check {
	c := Check{
		KeywordsLen:    utf8.RuneCountInString(md.Keywords),
		DescriptionLen: utf8.RuneCountInString(md.Description),
	}
	for _, v := range []string{md.Name, md.Subtitle, md.Description, md.Keywords, md.WhatsNew} {
		if strings.TrimSpace(v) != "" {
			c.Filled++
		}
	}
	if c.KeywordsLen > MaxKeywords {
		c.Problems = append(c.Problems, fmt.Sprintf("keywords %d > %d", c.KeywordsLen, MaxKeywords))
	}
	if c.DescriptionLen > MaxDescription {
		c.Problems = append(c.Problems, fmt.Sprintf("description %d > %d", c.DescriptionLen, MaxDescription))
	}
	return c
}

// CompletenessTable renders one row per locale with fill count and limit checks.
func CompletenessTable(snap snapshot.Snapshot) (string, error) {
	data := pterm.TableData{{"Locale", "Text", "Keywords", "Description", "Status"}}
	for _, locale := range OrderedLocales(snap) {
		md, _ := snap.Metadata.Get(locale)
		c := Inspect(md)
		status := c.Status()
		switch status {
		case "OK":
			status = pterm.Green(status)
		case "Invalid":
			status = pterm.Red(status + ": " + strings.Join(c.Problems, "; "))
		default:
			status = pterm.Yellow(status)
		}
		data = append(data, []string{
			locale,
			fmt.Sprintf("%d/5", c.Filled),
			fmt.Sprintf("%d/%d", c.KeywordsLen, MaxKeywords),
			fmt.Sprintf("%d/%d", c.DescriptionLen, MaxDescription),
			status,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

// Wrap breaks s into lines of at most width runes, on spaces where possible.
// Existing line breaks are kept.
func Wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			for utf8.RuneCountInString(word) > width {
				if line != "" {
					out = append(out, line)
					line = ""
				}
				r := []rune(word)
				out = append(out, string(r[:width]))
				word = string(r[width:])
			}
			switch {
			case line == "":
				line = word
			case utf8.RuneCountInString(line)+1+utf8.RuneCountInString(word) <= width:
				line += " " + word
			default:
				out = append(out, line)
				line = word
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
