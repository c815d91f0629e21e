package db

import (
	"context"
	"fmt"

	"github.com/navaneethdubbaka/Food-Engine/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Pool is nil when no database is configured.
var Pool *pgxpool.Pool

func Init(ctx context.Context, cfg config.DBConfig) error {
	if !cfg.Enabled() {
		return fmt.Errorf("DB_HOST not set")
	}
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping: %w", err)
	}
	Pool = pool
	return nil
}

func Close() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
