// Package cli implements the fieldpulse command-line interface using
// Cobra: serve, forecast, selftest, regions and sources.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fieldpulse",
	Short: "fieldpulse — regional behavior forecasting engine",
	Long: `fieldpulse fuses public economic, mobility and environmental
signals into a per-region behavior index and short-horizon forecast.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code
// (spec.md §6): 0 success, 2 invalid configuration, 64 usage error,
// 69 upstream unavailable, 73 deadline exceeded. Called from main.go.
func Execute(version string) int {
	rootCmd.Version = version

	err := rootCmd.Execute()
	code := exitCodeFor(err)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return code
}
