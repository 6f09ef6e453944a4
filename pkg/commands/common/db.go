package common

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lgicquelw-tech/made-in-france-sub000/pkg/configuration"
)

// GetDatabasePool opens a pool and pings it. An empty connString uses the
// configured database.
func GetDatabasePool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	if connString == "" {
		connString = configuration.Use().Database.Opts
	}
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	// The importer is sequential; one connection is used at a time.
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
