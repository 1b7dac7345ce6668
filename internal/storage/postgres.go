package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/abduss/filecrypt/internal/config"
	"github.com/abduss/filecrypt/internal/file"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	postgresConnectTimeout = 5 * time.Second
	postgresMaxConnIdle    = 5 * time.Minute
)

// NewPostgresPool connects to PostgreSQL and verifies the connection.
func NewPostgresPool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	poolCfg.MaxConnIdleTime = postgresMaxConnIdle

	connectCtx, cancel := context.WithTimeout(ctx, postgresConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	return pool, nil
}

func openPostgresMetadata(ctx context.Context, cfg config.PostgresConfig) (*file.PostgresRepository, func(), error) {
	pool, err := NewPostgresPool(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	repo := file.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure metadata schema: %w", err)
	}
	return repo, pool.Close, nil
}
