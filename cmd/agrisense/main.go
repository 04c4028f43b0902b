package main

import (
	"os"

	"github.com/agrisense/agrisense/cmd/agrisense/commands"
)

// main is the entry point for the AgriSense CLI.
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
