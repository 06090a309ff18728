package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fieldpulse/fieldpulse/internal/daemon"
	"github.com/fieldpulse/fieldpulse/internal/domain"
	"github.com/fieldpulse/fieldpulse/internal/orchestrator"
)

func init() {
	forecastCmd.Flags().StringVar(&forecastRegion, "region", "", "Region id to forecast (required)")
	forecastCmd.Flags().IntVar(&forecastDaysBack, "days-back", 365, "Days of history to fetch (1..3650)")
	forecastCmd.Flags().IntVar(&forecastHorizon, "horizon", 7, "Forecast horizon in days (1..90)")
	rootCmd.AddCommand(forecastCmd)
}

var (
	forecastRegion   string
	forecastDaysBack int
	forecastHorizon  int
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run one forecast for a region and print the result as JSON",
	RunE:  runForecast,
}

func runForecast(cmd *cobra.Command, args []string) error {
	if forecastRegion == "" {
		return fmt.Errorf("%w: --region is required", domain.ErrInvalidInput)
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	region, ok := d.Regions.Get(forecastRegion)
	if !ok {
		return fmt.Errorf("%w: unknown region id %q", domain.ErrInvalidInput, forecastRegion)
	}

	req := orchestrator.Request{DaysBack: forecastDaysBack, ForecastHorizon: forecastHorizon}
	result, err := d.Orchestrator.Run(context.Background(), region, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if encErr := enc.Encode(result); encErr != nil {
		return encErr
	}

	if result.Degraded {
		switch result.DegradedReason {
		case string(domain.ErrorKindDeadlineExceeded):
			return domain.ErrDeadlineExceeded
		case string(domain.ErrorKindAllSourcesMissing):
			return domain.ErrUpstreamUnavailable
		}
	}
	return nil
}
