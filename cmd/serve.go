package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/labelaudit/internal/auditcmd"
	"github.com/lehigh-university-libraries/labelaudit/internal/config"
	"github.com/lehigh-university-libraries/labelaudit/internal/handlers"
	"github.com/lehigh-university-libraries/labelaudit/internal/matcher"
	"github.com/lehigh-university-libraries/labelaudit/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port, configPath, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the verification API",
		Long: `Starts the labelaudit HTTP API on the specified port.

Endpoints:
  POST /api/match       match one value or one record against a text
  POST /api/runs        verify a batch of labels and store the run
  GET  /api/runs        list stored runs
  GET  /api/runs/{id}   fetch a stored run with its verdicts
  POST /api/extract     extract the text of an uploaded document`,
		Example: `  # Start server on default port 8888 with runs kept in memory
  labelaudit serve

  # Persist runs in SQLite
  labelaudit serve --port 3000 --db runs.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if dbPath == "" {
				dbPath = cfg.Store.Path
			}

			store, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			extractor, err := auditcmd.NewExtractor(cfg)
			if err != nil {
				return err
			}

			handler := handlers.New(store, matcher.New(cfg.MatcherOptions()), extractor, cfg.VerifyOptions())

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Labelaudit API available", "addr", addr, "url", "http://localhost"+addr, "db", dbPath)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
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
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML or TOML config file")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for runs (default in memory)")

	return cmd
}
