//go:build !amd64 && !arm64

// This file is used when building for architectures sonic does not support,
// utilizing the go-json library for JSON operations.

package json

import (
	stdjson "encoding/json"

	"github.com/goccy/go-json"
)

const Library = "github.com/goccy/go-json"

// RawMessage is a raw encoded JSON value, shared with encoding/json so custom
// marshalers interoperate with either backend.
type RawMessage = stdjson.RawMessage

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// MarshalIndent is like Marshal but applies indentation to format the output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return json.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
