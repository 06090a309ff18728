package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/fieldpulse/fieldpulse/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the forecasting API server",
	Long:  `Start the HTTP API (POST /forecast, GET /regions, GET /sources, GET /metrics).`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	if serveHost != "" {
		d.Config.Host = serveHost
	}
	if servePort > 0 {
		d.Config.Port = servePort
	}

	return d.Serve(context.Background())
}
