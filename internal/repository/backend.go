package repository

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/yt-harvest/internal/config"
	"github.com/Taichi-iskw/yt-harvest/internal/storage"
	"github.com/Taichi-iskw/yt-harvest/migrations"
)

// Open connects the cache backend selected in cfg.Cache.Backend
func Open(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Cache.Backend {
	case "", config.BackendFile:
		return NewFileBackend(storage.Layout{Root: cfg.OutputDir}), nil

	case config.BackendSQLite:
		db, err := OpenSQLite(ctx, cfg.Cache.SQLitePath)
		if err != nil {
			return nil, err
		}
		return NewSQLiteBackend(db), nil

	case config.BackendPostgres:
		if err := migrations.Up(cfg.Cache.DatabaseURL); err != nil {
			return nil, err
		}
		pool, err := config.NewDatabasePool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(pool), nil

	case config.BackendRedis:
		rdb, err := OpenRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(rdb), nil

	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
}
