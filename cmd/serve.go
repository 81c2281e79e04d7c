package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/paperlens/paperlens/internal/handlers"
	"github.com/paperlens/paperlens/internal/quota"
	"github.com/paperlens/paperlens/internal/raster"
	"github.com/paperlens/paperlens/internal/session"
	"github.com/paperlens/paperlens/internal/storage"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var port string
	var quotaLog string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start web server for the analysis interface",
		Long: `Starts the Paperlens API on the specified port.

The API accepts pasted text or PDF uploads, returns a structured analysis of
the paper, and answers follow-up questions about it. A local usage log
enforces a cooldown plus hourly and daily ceilings before any model call.`,
		Example: `  # Start server on default port 8888
  paperlens serve

  # Start server on custom port with a custom quota log location
  paperlens serve --port 3000 --quota-log /tmp/usage.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := newAnalyzer()
			if err != nil {
				return err
			}

			tracker := quota.NewTracker(quota.NewFileStore(quotaLog))
			archive := storage.New()
			controller := session.New(model, raster.NewMuPDF(), tracker, archive)
			handler := handlers.New(controller, tracker, archive)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/analyze/text", handler.HandleAnalyzeText)
			mux.HandleFunc("/api/analyze/files", handler.HandleAnalyzeFiles)
			mux.HandleFunc("/api/chat", handler.HandleChat)
			mux.HandleFunc("/api/cancel", handler.HandleCancel)
			mux.HandleFunc("/api/reset", handler.HandleReset)
			mux.HandleFunc("/api/state", handler.HandleState)
			mux.HandleFunc("/api/quota", handler.HandleQuota)
			mux.HandleFunc("/api/analyses", handler.HandleAnalyses)
			mux.HandleFunc("/api/analyses/", handler.HandleAnalysisDetail)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Paperlens interface available", "addr", addr, "url", "http://localhost"+addr)
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
	cmd.Flags().StringVar(&quotaLog, "quota-log", quota.DefaultLogPath(), "Path of the persisted usage log")

	return cmd
}
