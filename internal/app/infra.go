package app

import (
	"context"

	"admin-console/internal/audit"
	"admin-console/internal/cache"
	"admin-console/internal/config"
	"admin-console/internal/db"
	"admin-console/internal/logger"
)

// Infra holds the optional stores behind the console. Each falls back to a
// no-op implementation when it is not configured.
type Infra struct {
	ListCache cache.ListCache
	Audit     audit.Recorder

	closers []func() error
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	infra := &Infra{
		ListCache: cache.Noop{},
		Audit:     audit.Noop{},
	}

	if cfg.DatabaseDSN != "" {
		database, err := db.Open(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		infra.Audit = audit.NewPostgresRecorder(database)
		infra.closers = append(infra.closers, database.Close)
		logger.Info("database ready", nil)
	} else {
		logger.Warn("DATABASE_DSN not set, audit trail disabled", nil)
	}

	if cfg.RedisAddr != "" {
		client, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			_ = infra.Close()
			return nil, err
		}
		infra.ListCache = cache.NewRedisCache(client, cfg.ListCacheTTL)
		infra.closers = append(infra.closers, client.Close)
		logger.Info("redis ready", nil)
	} else {
		logger.Warn("REDIS_ADDR not set, list cache disabled", nil)
	}

	return infra, nil
}

// Close releases every configured store.
func (i *Infra) Close() error {
	var first error
	for _, closeFn := range i.closers {
		if err := closeFn(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
