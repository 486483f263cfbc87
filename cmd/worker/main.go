// Package main is the entrypoint for the gamescout suggestion worker.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/gamescout/internal/ai"
	"github.com/kiranshivaraju/gamescout/internal/api"
	"github.com/kiranshivaraju/gamescout/internal/api/handler"
	mw "github.com/kiranshivaraju/gamescout/internal/api/middleware"
	"github.com/kiranshivaraju/gamescout/internal/cache"
	"github.com/kiranshivaraju/gamescout/internal/config"
	"github.com/kiranshivaraju/gamescout/internal/store"
	"github.com/kiranshivaraju/gamescout/internal/suggest"
	"github.com/kiranshivaraju/gamescout/internal/supervisor"
	"github.com/kiranshivaraju/gamescout/internal/worker"
	"github.com/kiranshivaraju/gamescout/pkg/models"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		slog.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded",
		"explain_provider", cfg.Explain.Provider,
		"env", cfg.Server.Env,
		"worker_id", cfg.Worker.ID,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	suggestCfg := suggest.DefaultConfig()
	suggestCfg.Concurrency = cfg.Worker.Concurrency
	pool, err := store.Connect(ctx, cfg.Database, suggestCfg.MaxParallelFetches())
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	pgStore := store.NewPostgresStore(pool)

	// 4. Optional Redis: game cache and rate limiting
	var games store.GameStore = pgStore
	var redisCache *cache.RedisCache
	var gameCache *cache.GameCache
	if cfg.Redis.URL != "" {
		redisCache, err = cache.NewRedisCache(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("create redis cache: %w", err)
		}
		defer redisCache.Close()

		if err := redisCache.Ping(ctx); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		gameCache = cache.NewGameCache(pgStore, redisCache, cfg.Redis.GameCacheTTL, slog.Default())
		games = gameCache
		slog.Info("redis connected", "game_cache_ttl", cfg.Redis.GameCacheTTL)
	}

	// 5. Explanation provider
	provider, err := ai.NewExplainer(cfg.Explain)
	if err != nil {
		return fmt.Errorf("create explainer: %w", err)
	}
	explainer := explainerFor(provider, cfg.Explain)
	slog.Info("explainer initialized", "provider", explainer.Name())

	// 6. Pipeline and worker
	pipeline := suggest.New(games, explainer, suggestCfg, suggest.WithLogger(slog.Default()))

	w := worker.New(pgStore, pgStore, pipeline, worker.Config{
		ID:           cfg.Worker.ID,
		PollInterval: cfg.Worker.PollInterval,
	}, slog.Default())

	// 7. Ops HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      buildRouter(cfg, pgStore, redisCache, gameCache),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 8. Supervise worker and server until a termination signal
	tree := supervisor.NewTree(slog.Default(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Worker.ShutdownTimeout,
	})
	tree.AddWorker(w)
	tree.AddAPIService(supervisor.NewHTTPService(srv, cfg.Worker.ShutdownTimeout))

	slog.Info("worker starting", "addr", srv.Addr, "poll_interval", cfg.Worker.PollInterval)
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor: %w", err)
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			slog.Warn("service did not stop in time", "service", svc.Name)
		}
	}

	// The pool and Redis close when run returns; give a detached job one
	// more shutdown window to record its status first.
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer cancel()
	if err := w.Drain(drainCtx); err != nil {
		slog.Warn("in-flight job did not finish before shutdown; it stays running", "error", err)
	}
	slog.Info("worker stopped gracefully")
	return nil
}

// explainerFor wraps an LLM provider in the timeout and breaker guard. The
// template explainer cannot fail and is used as is.
func explainerFor(provider models.Explainer, cfg config.ExplainConfig) models.Explainer {
	if _, ok := provider.(ai.Template); ok {
		return provider
	}
	return ai.NewGuarded(provider, cfg.Timeout, ai.DefaultBreakerSettings(), slog.Default())
}

// buildRouter wires handlers. redisCache and gameCache are nil when Redis is not configured.
func buildRouter(cfg *config.Config, pgStore store.Store, redisCache *cache.RedisCache, gameCache *cache.GameCache) http.Handler {
	checks := map[string]handler.Pinger{"database": pgStore, "cache": nil}
	var rateLimit *mw.RateLimit
	var invalidator handler.Invalidator
	if redisCache != nil {
		checks["cache"] = redisCache
		rateLimit = mw.NewRateLimit(redisCache, cfg.Server.RateLimitPerMinute)
	}
	if gameCache != nil {
		invalidator = gameCache
	}

	var games handler.GameWriter
	if pg, ok := pgStore.(handler.GameWriter); ok {
		games = pg
	}
	var putGame http.HandlerFunc
	if games != nil {
		putGame = handler.NewPutGameHandler(games, invalidator)
	}

	return api.NewRouter(api.Dependencies{
		RateLimit:              rateLimit,
		HealthHandler:          handler.NewHealthHandler(checks),
		CreateJobHandler:       handler.NewCreateJobHandler(pgStore),
		GetJobHandler:          handler.NewGetJobHandler(pgStore),
		ListSuggestionsHandler: handler.NewListSuggestionsHandler(pgStore),
		PutGameHandler:         putGame,
	})
}
