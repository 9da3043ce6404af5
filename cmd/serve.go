package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/palletlog/palletlog/internal/handlers"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the pallet capture web form",
		Long: `Starts the palletlog web form on the specified port.

The form collects a document reference and a pallet photo, shows the
detected pallet count, and saves the photo and a log row only when the
user presses Confirm.`,
		Example: `  # Start server on default port 8888
  palletlog serve

  # Start server on custom port with a config file
  palletlog serve --port 3000 --config /etc/palletlog.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			ocrService, err := newOCRService(cfg)
			if err != nil {
				return err
			}

			handler := handlers.New(newOrchestrator(cfg), ocrService, *cfg.Photo.MaxEdge, staticDir)

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: handler.Routes(),
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Palletlog form available", "addr", addr, "url", "http://localhost"+addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&staticDir, "static", "static", "Directory holding the form's static files")

	return cmd
}
