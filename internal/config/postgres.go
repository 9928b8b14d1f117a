package config

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnectReadOnly opens the pool used by the chatbot side: schema
// introspection, vector retrieval and generated-query execution. The
// principal behind this DSN must not hold write privileges; that is the
// actual safety boundary for executing generated SQL.
func ConnectReadOnly(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	return connect(ctx, cfg.PostgresReadDSN)
}

// ConnectAdmin opens the privileged pool used only by the offline indexer.
func ConnectAdmin(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	if cfg.PostgresAdminDSN == "" {
		return nil, fmt.Errorf("POSTGRES_ADMIN_DSN is required for indexing")
	}
	return connect(ctx, cfg.PostgresAdminDSN)
}

func connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres DSN: %w", err)
	}
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	// Test connection
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	return pool, nil
}
