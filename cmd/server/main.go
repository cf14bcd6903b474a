package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/city-air-service/internal/adapter/http"
	"github.com/couchcryptid/city-air-service/internal/adapter/pollution"
	"github.com/couchcryptid/city-air-service/internal/adapter/wiki"
	"github.com/couchcryptid/city-air-service/internal/cache"
	"github.com/couchcryptid/city-air-service/internal/config"
	"github.com/couchcryptid/city-air-service/internal/domain"
	"github.com/couchcryptid/city-air-service/internal/enrich"
	"github.com/couchcryptid/city-air-service/internal/observability"
	"github.com/couchcryptid/city-air-service/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	descCache := cache.New[string](clock, cfg.CacheSweepInterval)
	pageCache := cache.New[domain.PageResult](clock, cfg.CacheSweepInterval)

	source := pollution.NewClient(cfg.PollutionURL, cfg.PollutionTimeout, logger)
	summaries := wiki.NewClient(cfg.WikiBaseURL, cfg.WikiTimeout, logger)

	enricher := enrich.New(summaries, descCache, clock, logger, metrics, enrich.Config{
		Spacing:     cfg.DescribeSpacing,
		PositiveTTL: cfg.DescribeTTL,
		NegativeTTL: cfg.DescribeNegativeTTL,
	})

	svc := pipeline.New(source, enricher, pageCache, logger, metrics, cfg.PageTTL)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, svc, logger, cfg.DefaultPageLimit, cfg.MaxPageLimit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("service started", "addr", cfg.HTTPAddr, "pollution_url", cfg.PollutionURL)
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	enricher.Stop()
	descCache.Stop()
	pageCache.Stop()

	logger.Info("shutdown complete")
}
