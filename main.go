// Command rosetta pulls App Store Connect metadata for every locale of an app.
package main

import (
	"rosetta/cli/cmd"
)

func main() {
	cmd.Execute()
}
