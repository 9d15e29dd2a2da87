package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckpointTable stores one row per object log follower.
const CheckpointTable = "objectlog_checkpoints"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS ` + CheckpointTable + ` (
		name              TEXT PRIMARY KEY,
		last_log_entry_id BIGINT NOT NULL DEFAULT 0,
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_` + CheckpointTable + `_updated
		ON ` + CheckpointTable + ` (updated_at)`,
}

// RunMigrations creates the follower tables. It is safe to run repeatedly.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, ddl := range migrations {
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
