package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/manifestnorm/internal/config"
	"github.com/JonMunkholm/manifestnorm/internal/export"
	"github.com/JonMunkholm/manifestnorm/internal/history"
	"github.com/JonMunkholm/manifestnorm/internal/logging"
	"github.com/JonMunkholm/manifestnorm/internal/manifest"
	"github.com/JonMunkholm/manifestnorm/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("configuration loaded", "config", cfg.String())

	// The spreadsheet engine warms up in the background; filename
	// classification works immediately.
	ready := manifest.NewReadiness()
	ready.Start(manifest.WarmUp)

	ctx := context.Background()
	store, closeStore, err := openHistory(ctx, cfg)
	if err != nil {
		logger.Error("failed to open history store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	// Background jobs stop on shutdown
	jobCtx, cancelJobs := context.WithCancel(ctx)
	if pruner, ok := store.(history.Pruner); ok {
		go history.StartRetention(jobCtx, pruner, history.RetentionConfig{
			MaxAge:   cfg.History.MaxAge(),
			Interval: cfg.History.PruneInterval,
		}, logger)
	}

	layouts := manifest.Layouts()
	kinds := make([]string, len(layouts))
	for i, l := range layouts {
		kinds[i] = string(l.Kind)
	}
	logger.Info("layouts registered", "count", len(layouts), "kinds", strings.Join(kinds, ","))

	server := web.NewServer(cfg, web.Deps{
		Pipeline: manifest.NewPipeline(ready, logger),
		Limiter:  manifest.NewLimiter(cfg.Processing.MaxConcurrent, cfg.Processing.MaxWaitTime),
		Exporter: export.NewService(cfg.Export.OutputDir, export.NewCounter(cfg.Export.CounterFile), logger),
		History:  store,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	logger.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// openHistory connects the Postgres history store when a database is
// configured and falls back to memory otherwise.
func openHistory(ctx context.Context, cfg *config.Config) (history.Store, func(), error) {
	if !cfg.Database.Enabled() {
		slog.Info("no database configured, keeping history in memory")
		return history.NewMemoryStore(history.DefaultMemoryCapacity), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	store := history.NewPostgresStore(pool)
	if err := store.Migrate(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return store, pool.Close, nil
}
