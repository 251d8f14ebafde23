package main

import (
	"os"

	"github.com/adam-platform/instrument-bridge/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
