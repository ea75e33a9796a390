package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/fieldform"
	"github.com/aretw0/fieldform/internal/cli"
	"github.com/aretw0/fieldform/internal/logging"
	httpAdapter "github.com/aretw0/fieldform/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves form sessions over a JSON API. Each session keeps its current
screen on the server; /events streams commits and navigation, /metrics
exposes Prometheus counters when metrics are enabled.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		logger := logging.New(cfg.Level())

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		streams := httpAdapter.NewStreamManager(logger)
		rt, err := cli.NewRuntime(ctx, cfg, logger, streams.Hooks())
		if err != nil {
			return err
		}
		defer func() {
			if err := rt.Close(); err != nil {
				logger.Warn("failed to close store", "err", err)
			}
		}()

		opts := []httpAdapter.Option{
			httpAdapter.WithStreams(streams),
			httpAdapter.WithVersion(fieldform.Version),
			httpAdapter.WithLogger(logger),
		}
		if rt.Registry != nil {
			opts = append(opts, httpAdapter.WithMetrics(rt.Registry))
		}

		srv := &http.Server{
			Addr:    ":" + cfg.HTTP.Port,
			Handler: httpAdapter.NewHandler(rt.Manager, opts...),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			fmt.Fprintf(cmd.OutOrStdout(), "Starting fieldform server on %s\n", srv.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving form %q (%d definitions)\n", rt.Schema.Root().Name, rt.Schema.Len())
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			fmt.Fprintln(cmd.OutOrStdout(), "\nStart shutdown...")

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", 5*time.Second, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "fieldform server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("http-port", "p", "", "Port to listen on (default 8080)")
}
