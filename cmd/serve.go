package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/partmatch/internal/catalog"
	"github.com/lehigh-university-libraries/partmatch/internal/handlers"
	"github.com/lehigh-university-libraries/partmatch/internal/metadata"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var flags catalogFlags
	var port string
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP scoring service",
		Long: `Starts the partmatch HTTP service on the specified port.

Catalogs for every profile are loaded at startup; --profile picks the one used
when a request does not name a profile. With --watch, edits to the --types
file are picked up without a restart. A catalog that fails validation is
logged and the previous one stays in service.

Endpoints:
  POST   /api/score                score a candidate against an original
  GET    /api/types[/{type}]       list component types
  GET    /api/comparisons[/{id}]   recent comparisons
  DELETE /api/comparisons/{id}
  GET    /metrics                  Prometheus metrics
  GET    /healthcheck`,
		Example: `  # Start server on default port 8888
  partmatch serve

  # Custom catalog, reloaded on change
  partmatch serve --types ./types.yaml --watch --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defaultProfile, path, err := flags.resolve()
			if err != nil {
				return err
			}
			if watch && path == "" {
				return fmt.Errorf("--watch requires --types or PARTMATCH_TYPES")
			}

			registries := make([]*metadata.Registry, 0, len(metadata.Profiles))
			for _, profile := range metadata.Profiles {
				reg, err := catalog.Load(profile, path)
				if err != nil {
					return fmt.Errorf("failed to load %s catalog: %w", profile, err)
				}
				slog.Info("Loaded catalog", "profile", profile, "types", reg.Len())
				registries = append(registries, reg)
			}

			handler := handlers.New(defaultProfile, registries...)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if watch {
				for _, profile := range metadata.Profiles {
					go func(profile metadata.Profile) {
						err := catalog.Watch(ctx, profile, path, func(reg *metadata.Registry) {
							handler.SetRegistry(reg)
							handler.Metrics().CatalogReloaded()
						})
						if err != nil {
							slog.Error("Catalog watcher stopped", "profile", profile, "err", err)
						}
					}(profile)
				}
			}

			addr := ":" + port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Partmatch service available", "addr", addr, "url", "http://localhost"+addr, "profile", defaultProfile)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-ctx.Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelShutdown()
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

	flags.register(cmd)
	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the --types catalog when the file changes")

	return cmd
}
