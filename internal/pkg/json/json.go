//go:build amd64 || arm64

// Package json provides a unified interface for JSON encoding and decoding operations.
// On amd64/arm64 it is backed by sonic; elsewhere by go-json.
package json

import (
	stdjson "encoding/json"

	"github.com/bytedance/sonic"
)

const Library = "github.com/bytedance/sonic"

// RawMessage is a raw encoded JSON value, shared with encoding/json so custom
// marshalers interoperate with either backend.
type RawMessage = stdjson.RawMessage

// api mirrors encoding/json behaviour (sorted map keys, HTML escaping) so that
// files written by this package are byte-stable across runs.
var api = sonic.ConfigStd

// Marshal returns the JSON encoding of v.
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent is like Marshal but applies indentation to format the output.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal parses the JSON-encoded data and stores the result in v.
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}
