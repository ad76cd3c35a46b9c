package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"vesselwatch/internal/adapters/cache"
	"vesselwatch/internal/adapters/feed/aisstream"
	v1 "vesselwatch/internal/adapters/handler/http/v1"
	"vesselwatch/internal/adapters/repository/postgres"
	"vesselwatch/internal/config"
	"vesselwatch/internal/core/domain"
	"vesselwatch/internal/core/port"
	"vesselwatch/internal/core/service/aggregation"
	"vesselwatch/internal/core/service/health"

	_ "github.com/lib/pq"
)

const (
	statsReportInterval  = 30 * time.Second
	retentionSweepPeriod = time.Hour
	shutdownTimeout      = 10 * time.Second
)

type App struct {
	cfg          *config.Config
	router       *http.ServeMux
	db           *sql.DB
	redisClient  *redis.Client
	cacheAdapter port.Cache

	feed       port.Feed
	engine     *aggregation.Engine
	repository *postgres.SummaryRepository

	// For graceful shutdown
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewApp(cfg *config.Config) *App {
	ctx, cancel := context.WithCancel(context.Background())

	return &App{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (app *App) Initialize() error {
	slog.Info("Initializing application...")
	app.router = http.NewServeMux()

	// Database connection
	dbConn, err := postgres.NewDBConn(&app.cfg.Repository)
	if err != nil {
		slog.Error("Connection to database failed", "error", err)
		return err
	}
	app.db = dbConn
	slog.Info("Database connected successfully")

	app.repository = postgres.NewSummaryRepository(app.db)
	if err := app.repository.EnsureSchema(app.ctx); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	// Redis connection
	redisClient := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", app.cfg.Cache.RedisHost, app.cfg.Cache.RedisPort),
		Password:     app.cfg.Cache.RedisPassword,
		DB:           app.cfg.Cache.RedisDB,
		PoolSize:     app.cfg.Cache.PoolSize,
		MinIdleConns: app.cfg.Cache.MinIdleConns,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Warn("Redis connection failed, continuing without cache", "error", err)
		app.redisClient = nil
		app.cacheAdapter = nil
	} else {
		app.redisClient = redisClient
		app.cacheAdapter = cache.NewRedisAdapter(redisClient)
		slog.Info("Redis connected successfully")
	}

	// Feed adapter
	app.feed = aisstream.NewClient(
		app.cfg.Feed.URL,
		app.cfg.Feed.APIKey,
		app.cfg.Feed.BoundingBoxes,
		app.cfg.Feed.MessageTypes,
	)

	// Aggregation engine with its persistence sink
	sink := &summarySink{repository: app.repository, cache: app.cacheAdapter}
	app.engine = aggregation.NewEngine(
		typeRanges(app.cfg.Aggregation.CategoryRanges),
		time.Duration(app.cfg.Aggregation.WindowSeconds)*time.Second,
		sink,
	)

	// Handlers
	healthService := health.NewHealthService(
		postgres.NewHealthRepository(app.db),
		app.cacheAdapter,
		app.feed,
		app.engine,
	)
	windowsHandler := v1.NewWindowsHandler(app.repository, app.cacheAdapter)
	statusHandler := v1.NewStatusHandler(app.engine, app.feed)
	healthHandler := v1.NewHealthHandler(healthService)

	v1.SetRoutes(app.router, windowsHandler, statusHandler, healthHandler)

	slog.Info("Application initialized successfully")
	return nil
}

// Run starts the feed, the event processor, and the HTTP server, then
// blocks until SIGINT or SIGTERM and shuts everything down in order.
func (app *App) Run() error {
	events, err := app.feed.Start(app.ctx)
	if err != nil {
		return fmt.Errorf("failed to start feed: %w", err)
	}

	app.startEventProcessor(events)
	app.startBackgroundTasks()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.App.Port),
		Handler: app.router,
	}

	go func() {
		slog.Info("Starting HTTP server", "port", app.cfg.App.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(app.ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	slog.Info("Shutdown signal received")
	app.shutdown(server)
	return nil
}

// startEventProcessor consumes the feed from a single goroutine: window
// transitions are single-writer and must never see concurrent events.
func (app *App) startEventProcessor(events <-chan domain.VesselEvent) {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()
		for event := range events {
			app.engine.Handle(app.ctx, event)
		}
		slog.Info("Event processor drained")
	}()
}

// startBackgroundTasks reports stats periodically and prunes aged rows.
func (app *App) startBackgroundTasks() {
	app.wg.Add(1)
	go func() {
		defer app.wg.Done()

		statsTicker := time.NewTicker(statsReportInterval)
		defer statsTicker.Stop()
		retentionTicker := time.NewTicker(retentionSweepPeriod)
		defer retentionTicker.Stop()

		for {
			select {
			case <-app.ctx.Done():
				return
			case <-statsTicker.C:
				app.reportStats()
			case <-retentionTicker.C:
				app.pruneOldData()
			}
		}
	}()
}

func (app *App) reportStats() {
	stats := app.engine.Stats()
	slog.Info("Pipeline stats",
		"messages_processed", stats["messages_processed"],
		"windows_completed", stats["windows_completed"],
		"cached_vessels", stats["cached_vessels"],
		"current_window_vessels", stats["current_window_vessels"])
}

func (app *App) pruneOldData() {
	if app.cfg.Aggregation.RetentionDays <= 0 {
		return
	}

	ctx, cancel := context.WithTimeout(app.ctx, 30*time.Second)
	defer cancel()

	retention := time.Duration(app.cfg.Aggregation.RetentionDays) * 24 * time.Hour
	cutoff := time.Now().UTC().Add(-retention)

	deleted, err := app.repository.PruneBefore(ctx, cutoff)
	if err != nil {
		slog.Error("Retention sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Retention sweep removed old windows", "rows", deleted, "cutoff", cutoff.Format(time.RFC3339))
	}

	if app.cacheAdapter != nil {
		if err := app.cacheAdapter.CleanupOldData(ctx, retention); err != nil {
			slog.Warn("Cache cleanup failed", "error", err)
		}
	}
}

// shutdown stops the feed, drains the processor, force-closes the open
// window so the last partial window is persisted, then releases resources.
func (app *App) shutdown(server *http.Server) {
	slog.Info("Stopping pipeline...")

	if err := app.feed.Stop(); err != nil {
		slog.Error("Failed to stop feed", "error", err)
	}
	app.cancel()

	done := make(chan struct{})
	go func() {
		app.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		slog.Warn("Timeout waiting for goroutines to stop")
	}

	// The processor has stopped, so the engine is safe to touch here.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.engine.ForceClose(ctx, time.Now().UTC()); err != nil {
		slog.Error("Failed to force close window", "error", err)
	}

	stats := app.engine.Stats()
	slog.Info("Final statistics",
		"messages_processed", stats["messages_processed"],
		"windows_completed", stats["windows_completed"],
		"cached_vessels", stats["cached_vessels"])

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}
	if app.redisClient != nil {
		app.redisClient.Close()
	}
	if app.db != nil {
		app.db.Close()
	}

	slog.Info("Pipeline stopped")
}

// typeRanges builds the classifier table, preferring config overrides over
// the built-in defaults.
func typeRanges(overrides []config.CategoryRange) domain.TypeRanges {
	if len(overrides) == 0 {
		return domain.DefaultTypeRanges()
	}

	ranges := make(domain.TypeRanges, 0, len(overrides))
	for _, r := range overrides {
		ranges = append(ranges, domain.TypeRange{
			Category: domain.Category(r.Category),
			Min:      r.Min,
			Max:      r.Max,
		})
	}
	return ranges
}
