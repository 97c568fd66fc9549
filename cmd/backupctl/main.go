// Package main provides the entry point for the backupctl CLI.
package main

import (
	"os"

	"cowrite/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
