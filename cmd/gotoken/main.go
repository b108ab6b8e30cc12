// Command gotoken issues, verifies and refreshes signed tokens from the command line
// and serves the same operations over HTTP.
package main

import (
	"fmt"
	"os"
)

var version = "dev" // set by the linker

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
