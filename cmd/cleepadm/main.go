package main

import (
	"fmt"
	"os"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := buildRootCmd(runServe).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "cleepadm:", err)
		os.Exit(1)
	}
}
