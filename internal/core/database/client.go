package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"github.com/rs/zerolog/log"

	"github.com/aufaim/docquery/internal/core"
)

// Store is the Postgres/pgvector implementation of core.ChunkStore.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects a pool, registers the pgvector codec on every connection,
// pings, and runs the idempotent schema bootstrap. A bootstrap failure is
// fatal for the read/write paths, so it is returned (and logged) rather than
// swallowed.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database url is empty")
	}

	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := ensureBootstrapped(ctx, pool); err != nil {
		pool.Close()
		log.Error().Err(err).Msg("schema bootstrap failed")
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

var _ core.ChunkStore = (*Store)(nil)
