package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/vitalvas/autoroute/autorouter"
	"github.com/vitalvas/autoroute/muxhandlers"
	"github.com/vitalvas/autoroute/openapi"
	"github.com/vitalvas/autoroute/router"
)

const shutdownTimeout = 10 * time.Second

var serveRunner = runServe

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the discovered route modules and their documentation",
		Example: strings.TrimSpace(`  autoroute serve --addr :8080 --docs /docs
  autoroute --config autoroute.yaml serve --verbose`),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serveRunner(ctx, cfg, newLogger(cmd.ErrOrStderr(), cfg.Verbose))
		},
	}

	flags := cmd.Flags()
	addStringFlags(flags, discoveryFields)
	addBoolFlags(flags, boolFields)
	addStringFlags(flags, serveFields)

	return cmd
}

// buildHandler assembles the root router with the middleware and the
// documentation endpoints.
func buildHandler(ctx context.Context, cfg *Config, logger *slog.Logger) (*router.Router, error) {
	override, err := cfg.loadOverride()
	if err != nil {
		return nil, err
	}

	ar := autorouter.New(cfg.discoveryConfig(logger))
	ar.Use(
		muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{Logger: logger}),
		muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{Logger: logger}),
	)

	root, err := ar.Generate(ctx)
	if err != nil {
		return nil, fmt.Errorf("mount routes: %w", err)
	}

	schemas, err := ar.Schemas(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover routes: %w", err)
	}

	gen := openapi.NewGenerator(ar, schemas, override, cfg.generatorConfig(logger))
	gen.Handle(root, cfg.Docs, &openapi.HandleConfig{Title: cfg.Title})

	return root, nil
}

func runServe(ctx context.Context, cfg *Config, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	handler, err := buildHandler(ctx, cfg, logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr, "docs", cfg.Docs)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
