package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tablesight/tablesight/internal/server"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP preview server",
	Long: `Run recognition over the capture source and serve the live table
state over HTTP.

The server provides the following endpoints:
  GET /health  - Health check endpoint
  GET /profile - Active room profile layout
  GET /frame   - Latest recognized frame as JSON
  GET /summary - Latest frame as a plain-text summary
  GET /metrics - Prometheus metrics
  GET /ws      - WebSocket frame push

Examples:
  tablesight serve --profile room.yaml --path table.png
  tablesight serve --profile room.yaml --source dir --path frames/ --port 3000
  tablesight serve --host 0.0.0.0 --push-interval 250ms`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Get configuration (includes CLI flags, config file, env vars, and defaults)
		cfg := GetConfig()
		applyCaptureFlags(cmd, cfg)

		// Extract server configuration with CLI flag overrides
		host := cfg.Server.Host
		if cmd.Flags().Changed("host") {
			host, _ = cmd.Flags().GetString("host")
		}

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		corsOrigin := cfg.Server.CORSOrigin
		if cmd.Flags().Changed("cors-origin") {
			corsOrigin, _ = cmd.Flags().GetString("cors-origin")
		}

		pushInterval := cfg.Server.PushInterval
		if cmd.Flags().Changed("push-interval") {
			pushInterval, _ = cmd.Flags().GetDuration("push-interval")
		}

		orch, err := buildOrchestrator(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize recognition: %w", err)
		}
		defer func() {
			if err := orch.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Error closing recognition: %v\n", err)
			}
		}()

		previewServer, err := server.NewServer(server.Config{
			Host:         host,
			Port:         port,
			CORSOrigin:   corsOrigin,
			PushInterval: pushInterval,
		}, orch)
		if err != nil {
			return fmt.Errorf("failed to initialize server: %w", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		go func() { _ = orch.Run(ctx) }()

		errCh := make(chan error, 1)
		go func() {
			slog.Info("Starting preview server", "host", host, "port", port)
			errCh <- previewServer.Run(ctx)
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal", "signal", sig.String())
			cancel()
			return <-errCh
		case err := <-errCh:
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("host", "H", "localhost", "server host")
	serveCmd.Flags().IntP("port", "p", 8080, "server port")
	serveCmd.Flags().String("cors-origin", "*", "CORS allowed origins")
	serveCmd.Flags().Duration("push-interval", server.DefaultConfig().PushInterval, "WebSocket push cadence")
	addCaptureFlags(serveCmd)
}
