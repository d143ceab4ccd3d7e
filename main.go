// ./main.go
package main

import (
	"github.com/xkilldash9x/deskhand/cmd"
)

// main is the entry point for the deskhand native messaging host.
func main() {
	// Execute the root command defined in the cmd package.
	// This handles command-line parsing, configuration, and the message loop.
	cmd.Execute()
}
