// Command catalogctl manages the study catalog: schema migrations, seeding and
// spreadsheet import/export.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/platform/cache"
	"github.com/p-n-ai/pai-study/internal/platform/config"
	"github.com/p-n-ai/pai-study/internal/platform/database"
	"github.com/p-n-ai/pai-study/internal/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := newRootCmd(openBackend).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// backend is an open catalog with its cleanup.
type backend struct {
	db    *database.DB // nil for non-Postgres backends
	svc   *catalog.Service
	close func()
}

type backendOpener func(ctx context.Context, cfg *config.Config) (*backend, error)

func newRootCmd(open backendOpener) *cobra.Command {
	var cfg *config.Config

	root := &cobra.Command{
		Use:          "catalogctl",
		Short:        "Manage the study resource catalog",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if url, _ := cmd.Flags().GetString("database-url"); url != "" {
				loaded.Database.URL = url
			}
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				loaded.Log.Level = "debug"
			}
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), config.LogConfig{Level: loaded.Log.Level, Format: "text"}))
			cfg = loaded
			return nil
		},
	}
	root.PersistentFlags().String("database-url", "", "PostgreSQL URL (overrides LEARN_DATABASE_URL)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cfgFn := func() *config.Config { return cfg }
	root.AddCommand(
		newMigrateCmd(cfgFn, open),
		newSeedCmd(cfgFn, open),
		newImportCmd(cfgFn, open),
		newExportCmd(cfgFn, open),
	)
	return root
}

// openBackend connects to the configured database and, when enabled, the
// query cache so writes invalidate what the API server has cached. Migrations
// are left to the migrate command.
func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	store, err := catalog.NewPostgresStore(db.Pool)
	if err != nil {
		db.Close()
		return nil, err
	}

	closers := []func(){db.Close}
	var queryCache catalog.QueryCache
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			slog.Warn("cache unavailable, cached API results may be stale until TTL", "error", err)
		} else {
			closers = append(closers, func() { _ = c.Close() })
			queryCache = c.Query("catalog")
		}
	}

	return &backend{
		db:  db,
		svc: catalog.NewService(store, queryCache),
		close: func() {
			for i := len(closers) - 1; i >= 0; i-- {
				closers[i]()
			}
		},
	}, nil
}
