// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	redisv9 "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"holdings_backend/internal/app/config"
	"holdings_backend/internal/feature/holdings/adapters"
	"holdings_backend/internal/feature/holdings/registry"
	"holdings_backend/internal/feature/holdings/usecase"
	"holdings_backend/internal/platform/cache"
	"holdings_backend/internal/platform/db"
	"holdings_backend/internal/platform/externalapi/fundsource"
	"holdings_backend/internal/platform/fetch"
	infrahttp "holdings_backend/internal/platform/http"
	infraredis "holdings_backend/internal/platform/redis"
	"holdings_backend/internal/shared/ratelimiter"
)

// NewFetchClient creates the GET client used by every holdings source.
func NewFetchClient(cfg fundsource.Config) *fetch.Client {
	return fetch.NewClient(infrahttp.NewHTTPClient(cfg.Timeout))
}

// NewHoldingsSource creates the source selector (API or scraped chain per fund).
func NewHoldingsSource(cfg fundsource.Config) *fundsource.Selector {
	return fundsource.New(cfg, NewFetchClient(cfg))
}

// NewSnapshotRepository creates the Snapshot Store.
// If Redis is available, reads go through the Redis cache.
func NewSnapshotRepository(gdb *gorm.DB, rdb *redisv9.Client, reg *registry.Registry, cfg config.Config) usecase.SnapshotRepository {
	store := adapters.NewHoldingRepository(gdb, adapters.StoreConfig{
		DefaultFund:   cfg.DefaultFund,
		SourceLimited: reg.SourceLimited(),
	})
	if rdb == nil {
		return store
	}
	return cache.NewCachingSnapshotRepository(rdb, cache.RefreshTTL(cfg.CacheRefreshHour, cfg.CacheTZ), store, "holdings")
}

// NewRateLimiter paces fund ingestion.
func NewRateLimiter(cfg config.Config) *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(cfg.IngestRateLimit, cfg.IngestRateInterval)
}

// App holds the wired use cases of one process.
type App struct {
	Registry *registry.Registry
	Store    usecase.SnapshotRepository
	Ingest   *usecase.IngestUsecase
	Compare  *usecase.CompareUsecase
	Location string // store location, for operator output
	Pinger   *sql.DB

	closers []func() error
}

// Build opens the store (and Redis when configured) and wires the use cases.
// Redis failures are not fatal; the process runs without cache.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	reg, err := registry.Load(cfg.FundsFile)
	if err != nil {
		return nil, err
	}

	gdb, err := db.OpenDB(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	app := &App{Registry: reg, Location: cfg.DB.Location()}
	if sqlDB, err := gdb.DB(); err == nil {
		app.Pinger = sqlDB
		app.closers = append(app.closers, sqlDB.Close)
	}

	rdb, err := infraredis.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		rdb = nil
	}
	if rdb != nil {
		app.closers = append(app.closers, rdb.Close)
	}

	app.Store = NewSnapshotRepository(gdb, rdb, reg, cfg)
	app.Ingest = usecase.NewIngestUsecase(reg, NewHoldingsSource(cfg.Fetch), app.Store, NewRateLimiter(cfg))
	app.Compare = usecase.NewCompareUsecase(app.Store)
	return app, nil
}

// Close releases the store and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}
