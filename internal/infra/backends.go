package infra

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/awesomegic/gicbank/internal/config"
)

// Backends holds the optional external connections. A nil field means the
// corresponding in-process implementation is used instead.
type Backends struct {
	DB    *pgxpool.Pool
	Cache *redis.Client
}

// Open connects to every backend whose URL is configured.
func Open(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Backends, error) {
	b := &Backends{}
	if cfg.DatabaseURL != "" {
		db, err := NewPostgresPool(ctx, cfg.DatabaseURL, cfg.AppName)
		if err != nil {
			return nil, err
		}
		b.DB = db
	} else {
		logger.Info("DATABASE_URL not set, using in-memory ledger and rule table")
	}

	if cfg.RedisURL != "" {
		cache, err := NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			b.Close(logger)
			return nil, err
		}
		b.Cache = cache
	} else {
		logger.Info("REDIS_URL not set, idempotency keys disabled")
	}
	return b, nil
}

// Close releases every open connection.
func (b *Backends) Close(logger *slog.Logger) {
	if b.Cache != nil {
		if err := b.Cache.Close(); err != nil {
			logger.Warn("close redis", "error", err)
		}
	}
	if b.DB != nil {
		b.DB.Close()
	}
}
