package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/p-n-ai/pai-study/internal/ai"
	"github.com/p-n-ai/pai-study/internal/api"
	"github.com/p-n-ai/pai-study/internal/catalog"
	"github.com/p-n-ai/pai-study/internal/planner"
	"github.com/p-n-ai/pai-study/internal/platform/cache"
	"github.com/p-n-ai/pai-study/internal/platform/config"
	"github.com/p-n-ai/pai-study/internal/platform/database"
	"github.com/p-n-ai/pai-study/internal/platform/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log))

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      a.handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// app holds the wired service and the resources it must release.
type app struct {
	handler http.Handler
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp connects the configured backends, seeds the catalog and builds the
// HTTP handler.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	var checks []api.HealthCheck

	var store catalog.Store
	var events planner.EventLogger = planner.NopEventLogger{}

	switch cfg.Store {
	case config.StoreMemory:
		store = catalog.NewMemoryStore()
		slog.Info("using in-memory catalog store")
	default:
		db, err := database.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		pgStore, err := catalog.NewPostgresStore(db.Pool)
		if err != nil {
			a.Close()
			return nil, err
		}
		store = pgStore
		events = planner.NewPostgresEventLogger(db.Pool)
		checks = append(checks, api.HealthCheck{Name: "database", Check: db.HealthCheck})
		slog.Info("connected to database")
	}

	// Must stay an untyped nil when caching is off.
	var queryCache catalog.QueryCache
	if cfg.Cache.Enabled {
		c, err := cache.New(ctx, cfg.Cache)
		if err != nil {
			slog.Warn("cache unavailable, serving without query cache", "error", err)
		} else {
			a.closers = append(a.closers, func() { _ = c.Close() })
			queryCache = c.Query("catalog")
			checks = append(checks, api.HealthCheck{Name: "cache", Check: c.HealthCheck})
			slog.Info("connected to cache", "ttl", cfg.Cache.TTL)
		}
	}

	seed, err := catalog.LoadSeed(cfg.SeedPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load seed catalog: %w", err)
	}
	if _, err := catalog.Seed(ctx, store, seed); err != nil {
		a.Close()
		return nil, fmt.Errorf("seed catalog: %w", err)
	}

	svc := catalog.NewService(store, queryCache)
	var quiz planner.QuizGenerator = planner.NewRandomQuizGenerator(nil)
	if cfg.HasAIProvider() {
		quiz = planner.NewAIQuizGenerator(newAIRouter(cfg), quiz)
		slog.Info("AI quiz generation enabled")
	}

	srv := api.NewServer(api.Config{
		Catalog: svc,
		Planner: planner.New(planner.Config{
			Resources: svc,
			Quiz:      quiz,
			Events:    events,
		}),
		AdminKeyHash: cfg.Admin.KeyHash,
		CORSOrigins:  cfg.CORS.Origins,
		HealthChecks: checks,
	})
	if !cfg.AdminEnabled() {
		slog.Info("admin endpoints disabled, LEARN_ADMIN_KEY_HASH is not set")
	}

	a.handler = srv.Handler()
	return a, nil
}

// aiRequestTimeout bounds a single completion call.
const aiRequestTimeout = 30 * time.Second

func newAIRouter(cfg *config.Config) *ai.Router {
	router := ai.NewRouter()
	httpClient := &http.Client{Timeout: aiRequestTimeout}
	if cfg.AI.OpenAI.APIKey != "" {
		router.Register("openai", ai.NewOpenAIProvider(cfg.AI.OpenAI.APIKey,
			ai.WithBaseURL(cfg.AI.OpenAI.BaseURL),
			ai.WithModel(cfg.AI.OpenAI.Model),
			ai.WithHTTPClient(httpClient),
		))
	}
	if cfg.AI.Ollama.Enabled {
		router.Register("ollama", ai.NewOllamaProvider(cfg.AI.Ollama.URL, cfg.AI.Ollama.Model,
			ai.WithHTTPClient(httpClient),
		))
	}
	return router
}
