package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/starcat-io/starfov/internal/cache"
	"github.com/starcat-io/starfov/internal/cache/lrustore"
	"github.com/starcat-io/starfov/internal/cache/redisstore"
	"github.com/starcat-io/starfov/internal/catalog/sqlitestore"
	"github.com/starcat-io/starfov/internal/config"
	"github.com/starcat-io/starfov/internal/logger"
	"github.com/starcat-io/starfov/internal/observability"
	"github.com/starcat-io/starfov/internal/query"
	"github.com/starcat-io/starfov/internal/server"
	"github.com/starcat-io/starfov/internal/version"
	"github.com/starcat-io/starfov/internal/watch"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP query service",
		Long: `Run the HTTP query service. All settings come from STARFOV_*
environment variables; see internal/config for the full list.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), rootOpts)
		},
	}
}

func runServe(ctx context.Context, rootOpts *RootOptions) error {
	cfg := config.FromEnv()
	if rootOpts.Verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   cfg.LogConsole,
		SampleN:   cfg.LogSampleN,
		Component: "starfov",
	}, os.Stdout)

	observability.ExposeBuildInfo(version.Version)
	log.Info().
		Str("version", version.Version).
		Str("addr", cfg.Addr).
		Str("catalog", cfg.CatalogPath).
		Bool("cache", cfg.Cache.Enabled).
		Msg("starting server")

	sopts := []sqlitestore.Option{sqlitestore.WithMaxConns(cfg.MaxCursors)}
	if cfg.HeavyPath != "" {
		sopts = append(sopts, sqlitestore.WithHeavyPath(cfg.HeavyPath))
	}
	store, err := sqlitestore.Open(ctx, cfg.CatalogPath, sopts...)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	app := &server.App{
		Engine:       query.New(store, cfg.CatalogPath, log),
		Ready:        store.Ping,
		DefaultLimit: cfg.DefaultLimit,
		MaxLimit:     cfg.MaxLimit,
		Log:          log,
	}

	var local *lrustore.Store
	if cfg.Cache.Enabled {
		local, err = lrustore.New(cfg.Cache.LocalSize)
		if err != nil {
			return fmt.Errorf("local cache: %w", err)
		}
		var c cache.Interface = local
		if cfg.Cache.RedisAddr != "" {
			remote, err := redisstore.New(ctx, cfg.Cache.RedisAddr)
			if err != nil {
				return fmt.Errorf("redis client: %w", err)
			}
			defer func() { _ = remote.Close() }()
			c = &cache.Tiered{Local: local, Remote: remote, LocalTTL: cfg.Cache.LocalTTL}
		}
		app.Cache = c
		app.CacheTTL = cfg.Cache.TTL
		app.CacheOpTimeout = cfg.Cache.OpTimeout
	}

	if cfg.Watch {
		w, err := watch.New(cfg.CatalogPath, 0, log, func(uint64) {
			if local != nil {
				local.Purge()
			}
		})
		if err != nil {
			return fmt.Errorf("catalog watcher: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("catalog watcher: %w", err)
		}
		defer func() { _ = w.Close() }()
		app.Generation = w.Generation
	} else {
		observability.SetCatalogGeneration(1)
		app.Generation = func() uint64 { return 1 }
	}

	return server.Run(ctx, cfg, log, app)
}
