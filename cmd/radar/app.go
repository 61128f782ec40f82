package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/datasource"
	"github.com/bossy-radar/radar/internal/fetcher"
	"github.com/bossy-radar/radar/internal/metrics"
	"github.com/bossy-radar/radar/internal/notify"
	"github.com/bossy-radar/radar/internal/watchlist"
)

// connectRedis returns a client when Redis answers, nil otherwise
func connectRedis(ctx context.Context) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis not available", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return rdb
}

// newDataSource builds the configured data source. In static mode the CLI
// reads snapshots straight from the data root, like a pre-render pass.
func newDataSource(ctx context.Context, n notify.Notifier, m *metrics.Metrics) (datasource.DataSource, context.Context, error) {
	ds, err := datasource.New(cfg.Data, datasource.Deps{
		Notifier: n,
		Logger:   logger,
		Metrics:  m,
	})
	if err != nil {
		return nil, ctx, err
	}
	if cfg.Data.Mode == config.ModeStatic {
		ctx = fetcher.WithPrerender(ctx)
	}
	return ds, ctx, nil
}

// cliNotifier reports user-facing messages through the log
func cliNotifier() notify.Notifier {
	return notify.NewDispatcher(logger, notify.NewLogNotifier(logger))
}

// openWatchlist opens the configured watchlist backend. rdb may be nil when
// Redis is not in use. The returned close function releases the backend.
func openWatchlist(ctx context.Context, rdb redis.Cmdable, m *metrics.Metrics) (*watchlist.Store, func(), error) {
	var (
		p       watchlist.Persister
		closeFn = func() {}
	)

	switch cfg.Watchlist.Backend {
	case config.BackendFile:
		p = watchlist.NewFilePersister(cfg.Watchlist.Path)
	case config.BackendMemory:
		p = watchlist.NewMemoryPersister()
	case config.BackendRedis:
		if rdb == nil {
			return nil, nil, fmt.Errorf("watchlist backend redis requires a reachable redis at %s", cfg.Redis.Addr)
		}
		p = watchlist.NewRedisPersister(rdb, cfg.Watchlist.Key)
	case config.BackendPostgres:
		pg, err := watchlist.NewPostgresPersister(ctx, cfg.Postgres.ConnectionString, cfg.Postgres.TableName, cfg.Watchlist.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres watchlist: %w", err)
		}
		p = pg
		closeFn = func() { _ = pg.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown watchlist backend %q", cfg.Watchlist.Backend)
	}

	store, err := watchlist.Open(ctx, p, logger, m)
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return store, closeFn, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
