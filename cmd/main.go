package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"dealradar/internal/bootstrap"
	"dealradar/internal/config"
	"dealradar/internal/middleware"
	"dealradar/internal/repository"
	"dealradar/internal/router"
	"dealradar/internal/scheduler"
	"dealradar/internal/scraper"
)

func main() {
	// --- Logger ---
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if hasArg("--bootstrap-db") {
		if err := runDBBootstrap(logger); err != nil {
			logger.Fatal("Database bootstrap failed", zap.Error(err))
		}
		logger.Info("Database bootstrap completed")
		return
	}

	// --- Config ---
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// --- Database ---
	db, err := config.NewDatabase(&cfg.Database, cfg.Server.Env)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		logger.Fatal("Failed to bootstrap database schema", zap.Error(err))
	}

	// --- Echo ---
	e := echo.New()
	e.HideBanner = true

	// --- Manual-run Deduper (Redis with in-memory fallback) ---
	runDeduper, dedupeErr := middleware.NewRunDeduper(
		cfg.Redis.Addr,
		cfg.Redis.Pass,
		cfg.Redis.DB,
		cfg.API.RunDedupeTTL,
	)
	if dedupeErr != nil {
		logger.Warn("Redis unavailable for run dedup, using in-memory fallback", zap.Error(dedupeErr))
	}

	// --- Repositories ---
	jobRepo := repository.NewScrapeJobRepository(db)
	productRepo := repository.NewProductRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	// --- Scrape Orchestrator ---
	orchestrator := scraper.NewOrchestrator(settingRepo, logger)

	// --- Scheduler ---
	recurrence := scheduler.NewRecurrence()
	executor := scheduler.NewExecutor(jobRepo, productRepo, orchestrator, recurrence, logger)
	repos := &scheduler.Repos{
		Job:     jobRepo,
		Product: productRepo,
		Setting: settingRepo,
	}
	sched := scheduler.New(repos, executor, recurrence, logger)
	sched.Start()

	// --- Routes ---
	router.Setup(e, db, sched, recurrence, runDeduper, logger, cfg.API.Key)

	// --- Start Server ---
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting dealradar server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	// Stop scheduler, wait for in-flight jobs
	ctx := sched.Stop()
	<-ctx.Done()

	// Stop HTTP server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}

func runDBBootstrap(logger *zap.Logger) error {
	dbCfg, err := config.LoadDatabaseOnly()
	if err != nil {
		return err
	}
	db, err := config.NewDatabase(dbCfg, "production")
	if err != nil {
		return err
	}
	if err := bootstrap.MigrateAndSeed(db); err != nil {
		return err
	}
	logger.Info("Schema migration and default seed completed")
	return nil
}
