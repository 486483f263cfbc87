package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kiranshivaraju/gamescout/internal/config"
)

// reservedConns stay free of pipeline game reads for job claims,
// suggestion writes and the ops API.
const reservedConns = 4

// PoolConfig builds pool settings for a process whose pipeline keeps up to
// fetchers game reads in flight. MaxConns is raised to fetchers plus
// reservedConns when the configured cap is lower.
func PoolConfig(cfg config.DatabaseConfig, fetchers int) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	maxConns := max(cfg.MaxOpenConns, fetchers+reservedConns)
	poolCfg.MaxConns = int32(maxConns)
	poolCfg.MinConns = int32(min(max(cfg.MaxIdleConns, 0), maxConns))
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	return poolCfg, nil
}

// Connect opens a pool sized by PoolConfig and checks it with a ping.
func Connect(ctx context.Context, cfg config.DatabaseConfig, fetchers int) (*pgxpool.Pool, error) {
	poolCfg, err := PoolConfig(cfg, fetchers)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}
