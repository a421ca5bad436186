// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package snapshot

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	gojson "github.com/goccy/go-json"

	"rosetta/cli/internal/pkg/json"
)

// Metadata is an insertion-ordered mapping from locale to LocaleMetadata.
// It encodes as a JSON object whose keys appear in insertion order.
type Metadata struct {
	order []string
	items map[string]LocaleMetadata
}

// Set inserts or replaces the entry for locale. Replacing keeps the original position.
func (m *Metadata) Set(locale string, v LocaleMetadata) {
	if m.items == nil {
		m.items = make(map[string]LocaleMetadata)
	}
	if _, ok := m.items[locale]; !ok {
		m.order = append(m.order, locale)
	}
	m.items[locale] = v
}

// Get returns the record for locale.
func (m Metadata) Get(locale string) (LocaleMetadata, bool) {
	v, ok := m.items[locale]
	return v, ok
}

// Locales returns the keys in order.
func (m Metadata) Locales() []string { return slices.Clone(m.order) }

// Len is the number of locales.
func (m Metadata) Len() int { return len(m.order) }

// Clone returns a deep copy.
func (m Metadata) Clone() Metadata {
	if m.items == nil {
		return Metadata{}
	}
	return Metadata{order: slices.Clone(m.order), items: maps.Clone(m.items)}
}

// Equal compares entries and their order.
func (m Metadata) Equal(o Metadata) bool {
	return slices.Equal(m.order, o.order) && maps.Equal(m.items, o.items)
}

// MarshalJSON writes locales in insertion order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, locale := range m.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(locale)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(m.items[locale])
		if err != nil {
			return nil, fmt.Errorf("encode locale %s: %w", locale, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps document key order. sonic has no token stream, so the
// walk uses go-json's decoder.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	*m = Metadata{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := gojson.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(gojson.Delim); !ok || d != '{' {
		return fmt.Errorf("metadata: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		locale, ok := tok.(string)
		if !ok {
			return fmt.Errorf("metadata: expected locale key, got %v", tok)
		}
		var raw gojson.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("metadata %s: %w", locale, err)
		}
		var v LocaleMetadata
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("metadata %s: %w", locale, err)
		}
		m.Set(locale, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
