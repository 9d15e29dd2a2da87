package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ryanbastic/go-sampledb/internal/fakeserver"
)

func (c *cli) fakeCmd() *cobra.Command {
	var port, apiKey string
	cmd := &cobra.Command{
		Use:   "fake",
		Short: "Serve an in-memory SampleDB API seeded with example data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:    ":" + port,
				Handler: fakeserver.New(c.logger, apiKey),
			}

			serveErr := make(chan error, 1)
			go func() {
				c.logger.Info("starting fake sampledb", "port", port)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serveErr <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-serveErr:
				return fmt.Errorf("fake server: %w", err)
			}
			c.logger.Info("shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&port, "port", c.cfg.FakePort, "listen port (FAKE_PORT)")
	cmd.Flags().StringVar(&apiKey, "key", c.cfg.FakeAPIKey, "accepted bearer key (FAKE_API_KEY)")
	return cmd
}
