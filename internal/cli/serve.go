package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/clubsearch/internal/metrics"
	chiTransport "github.com/kailas-cloud/clubsearch/internal/transport/chi"
	"github.com/kailas-cloud/clubsearch/internal/version"
)

func (a *app) newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the search over HTTP",
		Long: `Expose the club search as a JSON API:

  GET /v1/search?q=<query>&limit=<n>&score_threshold=<f>
  GET /health
  GET /metrics

Every search opens and closes its own Qdrant connection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig(a.opts.configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.HTTP.Port = port
			}
			if err := cfg.ValidateServe(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, err := a.newLogger(&cfg, a.level(&cfg, "info"))
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			c, err := build(&cfg, logger)
			if err != nil {
				return err
			}
			defer c.close()

			metrics.Register()

			server := chiTransport.NewServer(c.search, c.health, logger)
			srv := &http.Server{
				Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
				Handler:      chiTransport.NewRouter(server, cfg.Auth.APIKeys, logger),
				ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
				WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
			}

			target := c.search.Target()
			logger.Info("Starting clubsearch API server",
				zap.String("version", version.Version),
				zap.String("commit", version.Commit),
				zap.String("env", cfg.Logging.Env),
				zap.Int("http_port", cfg.HTTP.Port),
				zap.String("collection", target.Collection),
				zap.String("model", target.Model),
				zap.String("using", target.VectorName),
				zap.String("provider", cfg.Embedding.Provider),
				zap.Bool("auth", len(cfg.Auth.APIKeys) > 0),
			)

			return runServer(cmd.Context(), srv, time.Duration(cfg.HTTP.ShutdownSec)*time.Second, logger)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides HTTP_PORT)")
	return cmd
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
