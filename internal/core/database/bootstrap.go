package database

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed scripts/initdb.sql
var bootstrapFS embed.FS

const schemaVersion = 1

// ensureBootstrapped creates the vector extension, the chunks table and the
// meta table exactly once; subsequent startups are no-ops keyed on the
// recorded schema version.
func ensureBootstrapped(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()

	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
		  SELECT 1 FROM information_schema.tables
		  WHERE table_name = 'docquery_meta'
		)`).Scan(&exists)
	if err != nil {
		return fmt.Errorf("meta table check: %w", err)
	}

	if exists {
		var hasVersion bool
		err := pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM docquery_meta WHERE version = $1)`,
			schemaVersion).Scan(&hasVersion)
		if err != nil {
			return fmt.Errorf("meta version check: %w", err)
		}
		if hasVersion {
			return nil
		}
	}

	return runBootstrap(ctx, pool)
}

func runBootstrap(ctx context.Context, pool *pgxpool.Pool) error {
	sqlBytes, err := bootstrapFS.ReadFile("scripts/initdb.sql")
	if err != nil {
		return fmt.Errorf("read initdb.sql: %w", err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("exec bootstrap: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit bootstrap: %w", err)
	}
	return nil
}
