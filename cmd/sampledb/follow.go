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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ryanbastic/go-sampledb/internal/api"
	"github.com/ryanbastic/go-sampledb/internal/circuitbreaker"
	"github.com/ryanbastic/go-sampledb/internal/metrics"
	"github.com/ryanbastic/go-sampledb/internal/objectlog"
	"github.com/ryanbastic/go-sampledb/internal/storage"
	"github.com/ryanbastic/go-sampledb/pkg/sampledb"
)

const (
	shutdownTimeout = 10 * time.Second

	notifyRetries   = 3
	notifyBaseDelay = 500 * time.Millisecond
)

func (c *cli) followCmd() *cobra.Command {
	var (
		printEntries bool
		notify       []string
	)
	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Follow the object log and report new entries",
		Long: "Polls object_log_entries and logs each new entry. The position is kept in\n" +
			"Postgres when DATABASE_URL is set, in memory otherwise. Probes and metrics\n" +
			"are served on METRICS_PORT.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runFollow(cmd, printEntries, notify)
		},
	}
	cmd.Flags().BoolVar(&printEntries, "print", false, "also print every entry as JSON to stdout")
	cmd.Flags().StringSliceVar(&notify, "notify", nil, "JSON-RPC endpoint to deliver every entry to (repeatable)")
	return cmd
}

func (c *cli) runFollow(cmd *cobra.Command, printEntries bool, notify []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := c.logger

	client, err := c.connect(cmd)
	if err != nil {
		return err
	}
	logger.Info("connected to sampledb", "address", client.Address())

	backends := map[string]api.Pinger{
		"sampledb": api.PingerFunc(func(ctx context.Context) error {
			_, err := client.Users.Me(ctx)
			return err
		}),
	}

	var checkpoint objectlog.Checkpoint = objectlog.NewMemoryCheckpoint()
	if c.cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, c.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer pool.Close()

		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("ping database: %w", err)
		}
		if err := storage.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("connected to database")

		pc := storage.NewPostgresCheckpoint(pool, c.cfg.FollowQueryTimeout)
		checkpoint = pc
		backends["postgres"] = pc
		if err := prometheus.Register(metrics.NewPoolCollector(map[string]*pgxpool.Pool{"checkpoint": pool})); err != nil {
			logger.Warn("pool metrics not registered", "error", err)
		}
	} else {
		logger.Warn("DATABASE_URL not set, checkpoint is kept in memory")
	}

	breaker := circuitbreaker.New(c.cfg.BreakerMaxFailures, c.cfg.BreakerResetTimeout,
		circuitbreaker.WithFailurePredicate(objectlog.IsUnavailable),
		circuitbreaker.WithStateHook(func(from, to circuitbreaker.State) {
			metrics.SetBreakerState("sampledb", int(to))
			logger.Warn("circuit breaker state changed", "from", from.String(), "to", to.String())
		}),
	)

	registry := objectlog.NewRegistry()
	registry.Register(objectlog.AllTypes, func(ctx context.Context, e sampledb.ObjectLogEntry) error {
		logger.Info("object log entry",
			"log_entry_id", e.LogEntryID,
			"type", e.Type,
			"object_id", e.ObjectID,
			"user_id", e.UserID,
		)
		return nil
	})
	if printEntries {
		out := cmd.OutOrStdout()
		registry.Register(objectlog.AllTypes, func(ctx context.Context, e sampledb.ObjectLogEntry) error {
			return printJSON(out, e)
		})
	}

	if len(notify) > 0 {
		notifier := objectlog.NewNotifier(notifyRetries, notifyBaseDelay, c.cfg.Timeout)
		for _, endpoint := range notify {
			registry.Register(objectlog.AllTypes, notifier.Handler(endpoint))
			logger.Info("delivering entries", "endpoint", endpoint, "method", objectlog.NotifyMethod)
		}
	}

	follower := objectlog.NewFollower(c.cfg.FollowName, client.ObjectLog, registry, checkpoint, breaker, c.cfg.FollowPollInterval, logger)

	status := func() api.FollowerStatus {
		return api.FollowerStatus{
			Name:           follower.Name(),
			LastLogEntryID: follower.LastID(),
			Handlers:       registry.Len(),
			Breaker:        breaker.State().String(),
		}
	}
	srv := &http.Server{
		Addr:    ":" + c.cfg.MetricsPort,
		Handler: api.NewServer(logger, api.NewHealthHandler(backends, logger), status),
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting ops server", "port", c.cfg.MetricsPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- follower.Run(ctx) }()

	select {
	case err = <-runErr:
	case err = <-serveErr:
		err = fmt.Errorf("ops server: %w", err)
		stop()
		<-runErr
	}
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if serr := srv.Shutdown(shutdownCtx); serr != nil {
		logger.Error("ops server shutdown error", "error", serr)
	}

	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("shutdown complete", "last_log_entry_id", follower.LastID())
	return err
}
