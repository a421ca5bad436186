// Copyright (c) 2025 Rosetta Connect
// Licensed under the MIT License. See LICENSE file in the project root for details.

package bridge

import "strings"

// Module names a worker-side module.
type Module string

const (
	// CoreModule serves App Store Connect calls and is the fallback for any unprefixed name.
	CoreModule Module = "core"
	// AIModule serves translation and cost estimation calls.
	AIModule Module = "ai"
)

const aiPrefix = "ai_"

// Route maps a function name to the module exporting it.
func Route(function string) Module {
	if strings.HasPrefix(function, aiPrefix) {
		return AIModule
	}
	return CoreModule
}
