// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	rerrors "rosetta/cli/internal/errors"

	"github.com/pterm/pterm"
)

// PresentError formats an error for user display with masking.
func PresentError(context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Mask(err.Error())
	}
	return fmt.Sprintf("%s: %s", context, Mask(err.Error()))
}

// FormatPullError renders a pull failure with a title, likely causes and the
// next step to take, chosen from the error kind.
func FormatPullError(err error) string {
	var b strings.Builder

	title := "Pull failed"
	var hints []string
	action := "→ Re-run with --verbose to see the worker's diagnostics"

	switch rerrors.KindOf(err) {
	case rerrors.EnvironmentNotReady:
		title = "Worker runtime not ready"
		hints = []string{
			"The Node.js interpreter is not on PATH, or",
			"the worker's node_modules have not been installed",
		}
		action = "→ Run 'rosetta doctor' for the exact remedial command"
	case rerrors.InvalidIdentity:
		title = "Invalid bundle id"
		hints = []string{"Bundle ids look like com.example.app (at least two dot-separated segments)"}
		action = "→ Fix app.bundle_id in rosetta.yaml or pass the id as an argument"
	case rerrors.InvalidOptions:
		title = "Invalid options"
		action = "→ Check 'rosetta pull --help'"
	case rerrors.AccessDenied:
		title = "App Store Connect not reachable"
		hints = []string{
			"Credentials are missing or wrong (ISSUER_ID, KEY_ID, PRIVATE_KEY_PATH)",
			"The API key has no access to this app",
			"The network blocks appstoreconnect.apple.com",
		}
		action = "→ Run 'rosetta credentials set' and try again"
	case rerrors.Exhausted:
		title = "Download kept failing"
		hints = []string{
			"App Store Connect may be slow or rate limiting",
			"The worker may be crashing; see its output with --verbose",
		}
		action = "→ Try again later, or raise --retry"
	case rerrors.StorageFault:
		title = "Fetched data could not be saved"
		hints = []string{"The download succeeded, but writing local files or the archive failed"}
		action = "→ Check disk space and permissions, then re-run with --force"
	}

	b.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint(title))
	b.WriteString("\n")
	if len(hints) > 0 {
		b.WriteString("\n")
		for _, h := range hints {
			b.WriteString("  • " + h + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint(action))
	b.WriteString("\n\n")
	b.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	return b.String()
}
