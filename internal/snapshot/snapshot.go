// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package snapshot defines the strongly-typed App Store metadata snapshot
// produced by a pull, together with the pure transforms applied to it.
package snapshot

import (
	"regexp"
	"slices"

	rerrors "rosetta/cli/internal/errors"
)

// LocaleMetadata is the App Store text for one locale.
type LocaleMetadata struct {
	Name            string `json:"name,omitempty"`
	Subtitle        string `json:"subtitle,omitempty"`
	Description     string `json:"description,omitempty"`
	Keywords        string `json:"keywords,omitempty"`
	WhatsNew        string `json:"whatsNew,omitempty"`
	PromotionalText string `json:"promotionalText,omitempty"`
	MarketingURL    string `json:"marketingUrl,omitempty"`
	SupportURL      string `json:"supportUrl,omitempty"`
}

// Complete reports whether both name and description are present.
func (m LocaleMetadata) Complete() bool {
	return m.Name != "" && m.Description != ""
}

// Snapshot is the full locale-keyed metadata returned by a successful fetch.
type Snapshot struct {
	AppID         string   `json:"appId"`
	AppVersion    string   `json:"appVersion,omitempty"`
	DefaultLocale string   `json:"defaultLocale,omitempty"`
	Locales       []string `json:"locales"`
	Metadata      Metadata `json:"metadata"`
}

// Clone returns a deep copy, so collaborators can never observe later mutation.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Locales = slices.Clone(s.Locales)
	out.Metadata = s.Metadata.Clone()
	return out
}

// AllLocales returns the locale list followed by any metadata locale it is missing,
// preserving first-seen order.
func (s Snapshot) AllLocales() []string {
	seen := make(map[string]struct{}, len(s.Locales))
	out := make([]string, 0, len(s.Locales))
	for _, l := range s.Locales {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	for _, l := range s.Metadata.Locales() {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// FilterLocales reduces the snapshot to the locales in filter.
// The metadata mapping follows the filter's order; the locale list keeps its
// original relative order. An empty filter returns an unfiltered copy.
func (s Snapshot) FilterLocales(filter []string) Snapshot {
	out := s.Clone()
	if len(filter) == 0 {
		return out
	}

	want := make(map[string]struct{}, len(filter))
	for _, l := range filter {
		want[l] = struct{}{}
	}

	locales := make([]string, 0, len(filter))
	for _, l := range s.Locales {
		if _, ok := want[l]; ok {
			locales = append(locales, l)
		}
	}
	out.Locales = locales

	var md Metadata
	for _, l := range filter {
		if v, ok := s.Metadata.Get(l); ok {
			md.Set(l, v)
		}
	}
	out.Metadata = md
	return out
}

var identityPattern = regexp.MustCompile(`^[A-Za-z0-9-]+(\.[A-Za-z0-9-]+)+$`)

// ValidateIdentity checks that id is a reverse-domain bundle identifier.
func ValidateIdentity(id string) error {
	if !identityPattern.MatchString(id) {
		return rerrors.New(rerrors.InvalidIdentity,
			"bundle id "+quote(id)+" must be reverse-domain style, e.g. com.example.app")
	}
	return nil
}

func quote(s string) string { return `"` + s + `"` }
