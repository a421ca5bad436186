// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package model defines the wire format exchanged with the worker process.
// A call is a function name plus one JSON argument; the worker answers with a
// single envelope object on standard output:
//
//	{"success": true, "data": <value>}
//	{"success": false, "error": "<message>"}
//
// Loosely-typed JSON stays inside this package; callers decode Outcome.Data
// into their own types.
package model

import (
	"bytes"
	"fmt"
	"regexp"

	rerrors "rosetta/cli/internal/errors"
	"rosetta/cli/internal/pkg/json"
)

// Request is one call to a worker function.
type Request struct {
	Function string
	Args     json.RawMessage
}

var functionName = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// NewRequest validates the function name and encodes args.
func NewRequest(function string, args any) (Request, error) {
	if !functionName.MatchString(function) {
		return Request{}, rerrors.New(rerrors.InvalidOptions, fmt.Sprintf("invalid worker function name %q", function))
	}
	raw, err := json.Marshal(args)
	if err != nil {
		return Request{}, rerrors.Wrap(rerrors.InvalidOptions, "encode arguments for "+function, err)
	}
	return Request{Function: function, Args: raw}, nil
}

// Outcome is the decoded envelope. Exactly one of Data or Message is meaningful,
// selected by Success.
type Outcome struct {
	Success bool
	Data    json.RawMessage
	Message string
}

// Err converts a failure outcome into a WorkerFailure error; it is nil on success.
func (o Outcome) Err() error {
	if o.Success {
		return nil
	}
	return rerrors.New(rerrors.WorkerFailure, o.Message)
}

// IsNull reports whether the success payload is absent or JSON null.
func (o Outcome) IsNull() bool {
	d := bytes.TrimSpace(o.Data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}

const unknownError = "unknown error"

// Decode parses the worker's complete standard output.
// Output that is not a JSON object is a ProtocolFault.
func Decode(stdout []byte) (Outcome, error) {
	body := bytes.TrimSpace(stdout)
	if len(body) == 0 {
		return Outcome{}, rerrors.New(rerrors.ProtocolFault, "worker produced no output")
	}

	var env map[string]json.RawMessage
	if err := json.Unmarshal(body, &env); err != nil || env == nil {
		return Outcome{}, rerrors.Wrap(rerrors.ProtocolFault,
			fmt.Sprintf("worker output is not an envelope: %s", preview(body)), err)
	}

	if !truthy(env["success"]) {
		return Outcome{Message: failureMessage(env["error"])}, nil
	}
	data := env["data"]
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	return Outcome{Success: true, Data: data}, nil
}

// truthy follows JavaScript truthiness for the decoded success flag.
func truthy(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	default:
		return true
	}
}

func failureMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return unknownError
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return unknownError
		}
		return s
	}
	if t := string(bytes.TrimSpace(raw)); t != "null" {
		return t
	}
	return unknownError
}

func preview(b []byte) string {
	const max = 120
	if len(b) > max {
		return fmt.Sprintf("%q...", b[:max])
	}
	return fmt.Sprintf("%q", b)
}
