package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldpulse/fieldpulse/internal/daemon"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the registered source definitions as JSON",
	RunE:  runSources,
}

func runSources(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(d.Sources.List())
}
