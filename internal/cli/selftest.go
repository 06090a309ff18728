package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldpulse/fieldpulse/internal/daemon"
	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/selftest"
)

// errSelfTestFailed signals a clean self-test run that simply found the
// probe's regions did not diverge — distinct from an operational error
// reaching the probe.
var errSelfTestFailed = errors.New("variance probe did not pass")

func init() {
	selftestCmd.Flags().StringVar(&selftestRegionA, "region-a", "", "First region id (defaults to the first two registered regions)")
	selftestCmd.Flags().StringVar(&selftestRegionB, "region-b", "", "Second region id")
	selftestCmd.Flags().IntVar(&selftestWindowDays, "window-days", 45, "History window in days used for the probe")
	rootCmd.AddCommand(selftestCmd)
}

var (
	selftestRegionA    string
	selftestRegionB    string
	selftestWindowDays int
)

var selftestCmd = &cobra.Command{
	Use:   "selftest",
	Short: "Run the regional variance probe and print the report as JSON",
	Long: `Verifies spec.md §8 Testable Property 5: two geographically
distant regions must produce divergent REGIONAL source fingerprints and
a divergent composite behavior index.`,
	RunE: runSelfTest,
}

func runSelfTest(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	regionA, regionB, err := resolveProbeRegions(d)
	if err != nil {
		return err
	}

	probe := selftest.New(d.Sources, d.Connectors, d.Orchestrator)
	report, err := probe.Run(context.Background(), regionA, regionB, selftestWindowDays)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(report); encErr != nil {
		return encErr
	}

	if !report.Passed {
		return errSelfTestFailed
	}
	return nil
}

func resolveProbeRegions(d *daemon.Daemon) (domain.Region, domain.Region, error) {
	if selftestRegionA == "" || selftestRegionB == "" {
		all := d.Regions.List()
		if len(all) < 2 {
			return domain.Region{}, domain.Region{}, fmt.Errorf("%w: at least two registered regions are required for a self-test", domain.ErrInvalidConfiguration)
		}
		return all[0], all[1], nil
	}
	a, ok := d.Regions.Get(selftestRegionA)
	if !ok {
		return domain.Region{}, domain.Region{}, fmt.Errorf("%w: unknown region id %q", domain.ErrInvalidInput, selftestRegionA)
	}
	b, ok := d.Regions.Get(selftestRegionB)
	if !ok {
		return domain.Region{}, domain.Region{}, fmt.Errorf("%w: unknown region id %q", domain.ErrInvalidInput, selftestRegionB)
	}
	return a, b, nil
}
