// codeintel is the command line entry point. Business logic lives in cmd and
// internal.
package main

import (
	"fmt"
	"os"

	"codeintel/cmd"
)

// version is overridden at release time with -ldflags "-X main.version=vX.Y.Z".
var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "codeintel: %v\n", err)
		os.Exit(1)
	}
}
