package infra

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxPoolConns      = 10
	minPoolConns      = 1
	maxConnIdleTime   = 5 * time.Minute
	maxConnLifetime   = time.Hour
	healthCheckPeriod = 30 * time.Second
	// postings wait on the account row lock at most this long.
	lockTimeout = "5s"
)

// NewPostgresPool connects the ledger and rule table pool. appName tags the
// sessions in pg_stat_activity.
func NewPostgresPool(ctx context.Context, url, appName string) (*pgxpool.Pool, error) {
	cfg, err := poolConfig(url, appName)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// poolConfig caps the pool below whatever the URL asks for and sets session
// defaults unless the URL already does.
func poolConfig(url, appName string) (*pgxpool.Config, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > maxPoolConns {
		cfg.MaxConns = maxPoolConns
	}
	cfg.MinConns = minPoolConns
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.MaxConnLifetime = maxConnLifetime
	cfg.HealthCheckPeriod = healthCheckPeriod
	if appName != "" {
		cfg.ConnConfig.RuntimeParams["application_name"] = appName
	}
	if _, ok := cfg.ConnConfig.RuntimeParams["lock_timeout"]; !ok {
		cfg.ConnConfig.RuntimeParams["lock_timeout"] = lockTimeout
	}
	return cfg, nil
}
