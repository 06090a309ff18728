package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldpulse/fieldpulse/internal/daemon"
)

func init() {
	rootCmd.AddCommand(regionsCmd)
}

var regionsCmd = &cobra.Command{
	Use:   "regions",
	Short: "List the configured regions as JSON",
	RunE:  runRegions,
}

func runRegions(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Regions.List())
}
