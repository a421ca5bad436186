// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package model

import (
	"strings"

	"rosetta/cli/internal/pkg/json"
)

// Script renders the ES module program fed to the interpreter on stdin.
// Console output is redirected to stderr before the module loads so stdout
// carries only the envelope.
func Script(moduleURL string, req Request) (string, error) {
	mod, err := json.Marshal(moduleURL)
	if err != nil {
		return "", err
	}
	args, err := json.Marshal(string(req.Args))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("console.log = (...a) => console.error(...a);\n")
	b.WriteString("console.info = console.log;\n")
	b.WriteString("const emit = (v) => process.stdout.write(JSON.stringify(v) + \"\\n\");\n")
	b.WriteString("try {\n")
	b.WriteString("  const { " + req.Function + " } = await import(" + string(mod) + ");\n")
	b.WriteString("  const data = await " + req.Function + "(JSON.parse(" + string(args) + "));\n")
	b.WriteString("  emit({ success: true, data: data === undefined ? null : data });\n")
	b.WriteString("} catch (e) {\n")
	b.WriteString("  emit({ success: false, error: (e && e.message) ? e.message : String(e) });\n")
	b.WriteString("}\n")
	return b.String(), nil
}
