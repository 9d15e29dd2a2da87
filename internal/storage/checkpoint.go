package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCheckpoint stores object log follower positions in Postgres.
type PostgresCheckpoint struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// NewPostgresCheckpoint returns a checkpoint store on pool. queryTimeout
// bounds each query; zero means no timeout.
func NewPostgresCheckpoint(pool *pgxpool.Pool, queryTimeout time.Duration) *PostgresCheckpoint {
	return &PostgresCheckpoint{pool: pool, queryTimeout: queryTimeout}
}

func (c *PostgresCheckpoint) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.queryTimeout > 0 {
		return context.WithTimeout(ctx, c.queryTimeout)
	}
	return ctx, func() {}
}

// Load returns the stored position, or zero for a follower that never saved.
func (c *PostgresCheckpoint) Load(ctx context.Context, name string) (int, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var id int64
	err := c.pool.QueryRow(ctx,
		`SELECT last_log_entry_id FROM `+CheckpointTable+` WHERE name = $1`, name,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load checkpoint %q: %w", name, err)
	}
	return int(id), nil
}

func (c *PostgresCheckpoint) Save(ctx context.Context, name string, logEntryID int) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.pool.Exec(ctx, `
		INSERT INTO `+CheckpointTable+` (name, last_log_entry_id, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name)
		DO UPDATE SET last_log_entry_id = $2, updated_at = now()
	`, name, int64(logEntryID))
	if err != nil {
		return fmt.Errorf("save checkpoint %q: %w", name, err)
	}
	return nil
}

// Ping checks the database for readiness probes.
func (c *PostgresCheckpoint) Ping(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()
	return c.pool.Ping(ctx)
}
