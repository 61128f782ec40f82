package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/bossy-radar/radar/internal/catalog"
	"github.com/bossy-radar/radar/internal/config"
	"github.com/bossy-radar/radar/internal/watchlist"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the watchlist",
}

// withWatchlist opens the configured backend for the duration of fn
func withWatchlist(cmd *cobra.Command, fn func(wl *watchlist.Store) error) error {
	ctx := cmd.Context()

	var cmdable redis.Cmdable
	if cfg.Watchlist.Backend == config.BackendRedis {
		if rdb := connectRedis(ctx); rdb != nil {
			defer rdb.Close()
			cmdable = rdb
		}
	}

	wl, closeFn, err := openWatchlist(ctx, cmdable, nil)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(wl)
}

var watchListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show watched companies",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(wl *watchlist.Store) error {
			ds, ctx, err := newDataSource(cmd.Context(), cliNotifier(), nil)
			if err != nil {
				return err
			}
			companies, err := wl.Refresh(ctx, ds)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), companies)
		})
	},
}

var watchAddCmd = &cobra.Command{
	Use:   "add [code...]",
	Short: "Watch companies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(wl *watchlist.Store) error {
			ds, ctx, err := newDataSource(cmd.Context(), cliNotifier(), nil)
			if err != nil {
				return err
			}
			cat := catalog.NewStore(ds, cfg.Data.CatalogTTL, logger, nil)
			for _, code := range args {
				entry, ok, err := cat.Lookup(ctx, code)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("unknown company %q", code)
				}
				if err := wl.Add(ctx, entry.Company(time.Now())); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), wl.Codes())
		})
	},
}

var watchRemoveCmd = &cobra.Command{
	Use:   "remove [code...]",
	Short: "Stop watching companies",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(wl *watchlist.Store) error {
			for _, code := range args {
				if err := wl.Remove(cmd.Context(), code); err != nil {
					return err
				}
			}
			return printJSON(cmd.OutOrStdout(), wl.Codes())
		})
	},
}

var watchToggleCmd = &cobra.Command{
	Use:   "toggle [code]",
	Short: "Flip whether a company is watched",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWatchlist(cmd, func(wl *watchlist.Store) error {
			ds, ctx, err := newDataSource(cmd.Context(), cliNotifier(), nil)
			if err != nil {
				return err
			}
			entry, ok, err := catalog.NewStore(ds, cfg.Data.CatalogTTL, logger, nil).Lookup(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("unknown company %q", args[0])
			}
			watching, err := wl.Toggle(ctx, entry.Company(time.Now()))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{"code": entry.Code, "watching": watching})
		})
	},
}

func init() {
	watchCmd.AddCommand(watchListCmd, watchAddCmd, watchRemoveCmd, watchToggleCmd)
}
