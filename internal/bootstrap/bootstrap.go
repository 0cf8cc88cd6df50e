// Package bootstrap wires configuration into the runtime dependencies shared by
// the API server and cityctl.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/welcometomycity/citycore/internal/cache"
	"github.com/welcometomycity/citycore/internal/config"
	"github.com/welcometomycity/citycore/internal/dataset"
	"github.com/welcometomycity/citycore/internal/db"
	"github.com/welcometomycity/citycore/internal/places"
	"go.uber.org/zap"
)

// Runtime holds the opened dependencies
type Runtime struct {
	Store  *dataset.Store
	Cache  cache.Cache
	Pool   *pgxpool.Pool // nil unless data comes from Postgres
	Places *places.Service
}

// Open loads the dataset, connects the cache and sets up place generation.
// A missing or broken AI configuration is logged, not fatal.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	rt := &Runtime{}

	if cfg.UsePostgres() {
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		rt.Pool = pool

		store, err := dataset.LoadFromDB(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to load dataset from database: %w", err)
		}
		rt.Store = store
	} else {
		store, err := dataset.LoadEmbedded()
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded dataset: %w", err)
		}
		rt.Store = store
	}
	logger.Info("dataset loaded", zap.String("source", cfg.Data.Source), zap.Any("counts", rt.Store.Counts()))

	c, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Cache = c
	logger.Info("cache ready", zap.String("backend", c.Backend()))

	var generator places.Generator
	gen, err := places.NewGenAIGenerator(ctx, cfg.Places.APIKey, cfg.Places.Model)
	switch {
	case errors.Is(err, places.ErrNotConfigured):
		logger.Warn("place generation disabled: no API key configured")
	case err != nil:
		logger.Error("place generation disabled", zap.Error(err))
	default:
		generator = gen
	}

	rt.Places = places.NewService(rt.Store, generator, rt.Cache, logger.Named("places"), places.Options{
		Model:    cfg.Places.Model,
		CacheTTL: cfg.Places.CacheTTL,
		LockTTL:  cfg.Redis.MutexTTL,
		Timeout:  cfg.Places.GenerateTimeout,
	})

	return rt, nil
}

// Close releases the cache and database pool
func (r *Runtime) Close() error {
	var err error
	if r.Cache != nil {
		err = r.Cache.Close()
	}
	if r.Pool != nil {
		r.Pool.Close()
	}
	return err
}
