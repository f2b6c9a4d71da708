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

	"github.com/bckpockets/droppy-scraper/app/api"
	"github.com/bckpockets/droppy-scraper/app/catalog"
	"github.com/bckpockets/droppy-scraper/app/cfg"
	"github.com/bckpockets/droppy-scraper/app/database"
	"github.com/bckpockets/droppy-scraper/app/drops"
	"github.com/bckpockets/droppy-scraper/app/output"
	"github.com/bckpockets/droppy-scraper/app/tasks"
	"github.com/bckpockets/droppy-scraper/app/wiki"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}

	setupLogger(appCfg)

	slog.Info("Starting droppy-scraper", "version", appCfg.Version, "command", appCfg.Command)

	sourceCatalog, err := catalog.Load(appCfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load catalog", "path", appCfg.CatalogPath, "error", err)
		return 1
	}
	slog.Info("Catalog loaded", "sources", len(sourceCatalog.Sources), "aliases", len(sourceCatalog.Aliases))

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to connect to database", "path", appCfg.DBPath, "error", err)
		return 1
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return 1
	}
	slog.Debug("Database ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

	wikiClient := wiki.NewClient(&http.Client{}, appCfg.WikiAPI, appCfg.UserAgent, appCfg.Timeout, appCfg.RequestDelay)
	extractor := drops.NewExtractor(sourceCatalog.Markers, drops.NewNormalizer(sourceCatalog.RarityKeywords()))
	sourceRepo := database.NewSourceRepository(db)
	runRepo := database.NewRunRepository(db)

	pipeline := tasks.NewPipeline(
		sourceCatalog,
		tasks.NewScraper(wikiClient, extractor, sourceCatalog),
		wikiClient,
		output.NewWriter(appCfg.OutputDir),
		sourceRepo,
		runRepo,
		tasks.Options{
			PricesURL:      appCfg.PricesAPI,
			ResolveItemIDs: appCfg.ResolveItemIDs,
			ClogFilter:     appCfg.ClogFilter,
		},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch appCfg.Command {
	case cfg.CommandServe:
		scheduler := tasks.NewScheduler(pipeline, appCfg.ScrapeInterval)
		handler := api.NewHandler(sourceRepo, runRepo, sourceCatalog,
			api.NewDryStore(api.DefaultDrySize, api.DefaultDryTTL), pipeline, scheduler, appCfg.Version)
		return serve(ctx, appCfg, scheduler, handler)
	default:
		return scrape(ctx, appCfg, pipeline)
	}
}

func setupLogger(appCfg *cfg.Cfg) {
	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if appCfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func scrape(ctx context.Context, appCfg *cfg.Cfg, pipeline *tasks.Pipeline) int {
	report, err := pipeline.RunAll(ctx)
	if err != nil {
		slog.Error("Scrape failed", "error", err)
		return 1
	}

	if len(report.Resolved) == 0 {
		slog.Error("No sources resolved", "failed", len(report.Failed))
		return 1
	}

	slog.Info("Output written", "dir", appCfg.OutputDir, "sources", len(report.Resolved), "drops", report.Drops)
	return 0
}

func serve(ctx context.Context, appCfg *cfg.Cfg, scheduler tasks.TaskSchedulerInterface, handler *api.Handler) int {
	slog.Info("Starting background scheduler", "scrape_interval", appCfg.ScrapeInterval)
	scheduler.Start()
	defer scheduler.Stop()

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
		exitCode = 1
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return exitCode
}
