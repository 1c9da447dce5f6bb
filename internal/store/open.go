package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/richmondnkrumah/Data-Scraper/internal/config"
)

// Open builds the configured backend and runs its migrations.
func Open(ctx context.Context, cfg config.StoreConfig, cache config.CacheConfig) (Store, error) {
	var (
		st  Store
		err error
	)
	switch cfg.Driver {
	case "", "memory":
		st = NewMemory()
	case "sqlite":
		st, err = NewSQLite(cfg.SQLitePath)
	case "postgres":
		st, err = NewPostgres(ctx, cfg.DatabaseURL, &PoolConfig{MaxConns: cfg.MaxConns})
	case "redis":
		st, err = NewRedis(ctx, RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			Retention: time.Duration(cache.RetentionHours) * time.Hour,
		})
	case "mongo":
		st, err = NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	zap.L().Info("store opened", zap.String("driver", cfg.Driver))
	return st, nil
}
