// Package main is the single-binary entrypoint for fieldpulse.
package main

import (
	"os"

	"github.com/fieldpulse/fieldpulse/internal/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(cli.Execute(version))
}
