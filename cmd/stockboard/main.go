package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stockboard/internal/collector"
	"stockboard/internal/config"
	"stockboard/internal/platform/sqlite"
	"stockboard/internal/provider/alphavantage"
	"stockboard/internal/quote"
	quoterepo "stockboard/internal/repository/quote"
	"stockboard/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Provider.APIKey == "" {
		slog.Error("ALPHAVANTAGE_API_KEY is not set")
		os.Exit(1)
	}

	// Root context: cancelled on SIGINT/SIGTERM so in-flight lookups and
	// collector runs stop promptly during graceful shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Open database
	db, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	// Provider client
	client := alphavantage.New(cfg.Provider.APIKey,
		alphavantage.WithBaseURL(cfg.Provider.BaseURL),
		alphavantage.WithHTTPClient(&http.Client{Timeout: cfg.Provider.Timeout}),
		alphavantage.WithRequestsPerMinute(cfg.Provider.RequestsPerMinute),
	)

	// Orchestrating service over the persistent store
	quoteSvc := quote.NewService(quoterepo.NewRepository(db.DB), client,
		quote.WithTTL(cfg.QuoteTTL),
		quote.WithFetchTimeout(cfg.Provider.Timeout),
	)

	// Background collector: refreshes the configured symbols on a timer.
	coll := collector.New(quoteSvc, cfg.Collector.Symbols, cfg.Collector.Interval, cfg.Workers)
	collDone := make(chan struct{})
	go func() {
		coll.Run(rootCtx)
		close(collDone)
	}()

	// HTTP server — rootCtx is used as BaseContext so every request context
	// inherits from it and is cancelled on shutdown.
	srv := server.New(rootCtx, cfg.Port, quoteSvc, coll)

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("server started", "port", cfg.Port, "symbols", len(cfg.Collector.Symbols))
	<-done

	// Cancel root context first so in-flight requests and the collector begin
	// winding down immediately.
	rootCancel()
	<-collDone

	// Then drain connections with a deadline.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	slog.Info("server stopped")
}
