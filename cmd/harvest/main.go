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

	"github.com/use-agent/harvest/api"
	"github.com/use-agent/harvest/api/handler"
	"github.com/use-agent/harvest/config"
	"github.com/use-agent/harvest/engine"
	"github.com/use-agent/harvest/enrich"
	"github.com/use-agent/harvest/listing"
	"github.com/use-agent/harvest/metrics"
	"github.com/use-agent/harvest/pipeline"
	"github.com/use-agent/harvest/scraper"
	"github.com/use-agent/harvest/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("harvest starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"listing", cfg.Harvest.ListingURL,
		"concurrency", cfg.Enrich.Concurrency,
	)

	// ── 3. Initialise scraper (launches browser) ────────────────────
	sc, err := scraper.NewScraper(cfg.Browser, cfg.Scraper)
	if err != nil {
		slog.Error("failed to initialise scraper", "error", err)
		os.Exit(1)
	}
	defer sc.Close()

	// ── 4. Detail fetch engines ─────────────────────────────────────
	// The browser engine calls the scraper directly; engine/ never imports scraper/.
	var engines []engine.Engine
	if cfg.Engine.EnableMultiEngine {
		engines = append(engines, engine.NewHTTPEngine(cfg.Engine.HTTPTimeout))
	}
	engines = append(engines, engine.NewRodEngine(sc.RenderDetail))

	dispatcher := engine.NewDispatcher(engines, engine.NewDomainMemory(cfg.Engine.MemoryTTL))
	fetcher := engine.NewPageFetcher(dispatcher, cfg.Enrich.DetailTimeout)
	slog.Info("detail engines ready", "engines", len(engines))

	// ── 5. Pipeline ─────────────────────────────────────────────────
	m := metrics.New()
	p := pipeline.New(
		cfg.Harvest.ListingURL,
		sc,
		listing.NewHarvester(listing.Config{
			StallLimit: cfg.Harvest.StallLimit,
			MaxScrolls: cfg.Harvest.MaxScrolls,
		}),
		enrich.New(fetcher, cfg.Harvest.Origin, cfg.Enrich.Concurrency),
		m,
	)

	// ── 6. Job store and router ─────────────────────────────────────
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	jobs := handler.NewJobStore(cfg.Harvest.JobTTL)
	go jobs.RunSweeper(bgCtx, 5*time.Minute)

	router := api.NewRouter(api.Deps{
		Runner:   p,
		Pool:     sc,
		Jobs:     jobs,
		Notifier: webhook.NewNotifier(cfg.Webhook),
		Metrics:  m,
	}, cfg, time.Now())

	// ── 7. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 8. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// sc.Close() runs via defer: drains page pool and kills Chrome.
	slog.Info("harvest stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if cfg.Format == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(h))
}
