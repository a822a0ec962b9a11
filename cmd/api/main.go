// Package main implements the listings API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/scrape"
	"github.com/WessleyAI/wessley-listings/engine/source"
	"github.com/WessleyAI/wessley-listings/pkg/config"
	"github.com/WessleyAI/wessley-listings/pkg/metrics"
	"github.com/WessleyAI/wessley-listings/pkg/mid"
)

func main() {
	configPath := flag.String("config", os.Getenv("LISTINGS_CONFIG"), "path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	fetcher := fetch.New(source.FetchOptions(cfg.Fetch))
	agg := source.NewAggregator(fetcher,
		source.ScrapeOptions(cfg.Scrape, logger, scrape.NewMetrics(reg)))

	api := &server{
		scraper:  agg,
		fetcher:  fetcher,
		defaults: cfg.Sources.BaseURLs(),
		ignore:   cfg.Scrape.IgnoreIndividuals,
		logger:   logger,
		inFlight: reg.Gauge("scrape_in_flight", "Scrape requests currently running"),
	}

	// WriteTimeout must outlast the per-request scrape timeout.
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      newHandler(api, reg, cfg.Server, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout.Duration + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "port", cfg.Server.Port, "sources", agg.Sources())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// newHandler builds the routed, middleware-wrapped handler.
func newHandler(api *server, reg *metrics.Registry, cfg config.ServerConfig, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.Handle("GET /api/scrape", mid.Timeout(cfg.RequestTimeout.Duration)(http.HandlerFunc(api.handleScrape)))
	mux.Handle("GET /api/links", mid.Timeout(cfg.RequestTimeout.Duration)(http.HandlerFunc(api.handleLinks)))
	mux.Handle("GET /metrics", reg.Handler())

	return mid.Chain(mux,
		mid.Recover(logger),
		mid.RequestID(),
		mid.Logger(logger),
		mid.Metrics(reg),
		mid.CORS(cfg.CORSOrigin),
		mid.OTel("listings-api"),
	)
}
