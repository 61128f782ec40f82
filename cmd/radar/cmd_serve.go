package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bossy-radar/radar/internal/catalog"
	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/datasource"
	"github.com/bossy-radar/radar/internal/metrics"
	"github.com/bossy-radar/radar/internal/notify"
	"github.com/bossy-radar/radar/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP service",
	Long: `Serves the data API, the snapshot tree under /data/, the watchlist and
pending user notifications. Notifications go to a Redis list when Redis is
reachable so every replica hands out the same queue.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	m := metrics.New()

	rdb := connectRedis(ctx)
	if rdb != nil {
		defer rdb.Close()
	}

	// Notification sinks: the log always, plus a queue the UI drains
	var drainer interface {
		notify.Notifier
		notify.Drainer
	}
	if rdb != nil {
		drainer = notify.NewRedisQueue(rdb, cfg.Redis.NotifyQueue)
	} else {
		drainer = notify.NewMemory(200)
	}
	notifier := notify.NewDispatcher(logger, notify.NewLogNotifier(logger), drainer)

	// In static mode the server reads snapshots back through its own /data/
	// route, addressed by configuration rather than by request headers.
	selfOrigin := ""
	if cfg.Data.Mode == config.ModeStatic {
		selfOrigin = server.SelfOrigin(cfg.Server.Addr)
		if cfg.Data.PublicBase == "" {
			cfg.Data.PublicBase = selfOrigin
		}
	}

	ds, err := datasource.New(cfg.Data, datasource.Deps{Notifier: notifier, Logger: logger, Metrics: m})
	if err != nil {
		return err
	}
	cat := catalog.NewStore(ds, cfg.Data.CatalogTTL, logger, m)

	if cfg.Data.Mode == config.ModeStatic && cfg.Server.WatchSnapshots && cfg.Data.DataRoot != "" {
		stop, err := cat.Watch(ctx, cfg.Data.DataRoot)
		if err != nil {
			logger.Warn("snapshot watcher disabled", zap.Error(err))
		} else {
			defer stop()
		}
	}

	// a nil *redis.Client must not reach openWatchlist as a non-nil Cmdable
	var cmdable redis.Cmdable
	if rdb != nil {
		cmdable = rdb
	}
	wl, closeWatchlist, err := openWatchlist(ctx, cmdable, m)
	if err != nil {
		return err
	}
	defer closeWatchlist()

	dataRoot := ""
	if cfg.Data.Mode == config.ModeStatic {
		dataRoot = cfg.Data.DataRoot
	}
	h := server.NewHandler(ds, cat, wl, drainer, logger)
	srv := server.New(cfg.Server, server.NewRouter(h, dataRoot, selfOrigin, logger, m), logger)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case <-quit:
		logger.Info("shutting down...")
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", zap.Error(err))
		return err
	}
	logger.Info("bye")
	return nil
}
