package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/regscout/internal/metrics"
	"github.com/ppiankov/regscout/internal/record"
	"github.com/ppiankov/regscout/internal/server"
)

var (
	serveHost    string
	servePort    int
	serveRecords string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the records file over HTTP",
	Long: `Serve starts a read-only HTTP API for the review front end:

  GET /regulations   the records file, re-read on every request
  GET /health        liveness
  GET /metrics       Prometheus metrics

Stops gracefully on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (default from config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "listen port (default from config, 5000)")
	serveCmd.Flags().StringVar(&serveRecords, "records", "", "records file to serve (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("records") {
		cfg.Output.RecordsPath = serveRecords
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	// Registers the pipeline collectors so /metrics always lists them
	metrics.Default()

	srv, err := server.NewServer(record.NewStore(cfg.Output.RecordsPath), logger, &server.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "✓ Serving %s on http://%s\n", cfg.Output.RecordsPath, srv.Addr())
	return srv.Run(ctx)
}
