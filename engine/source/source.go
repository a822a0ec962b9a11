// Package source wires the supported site adapters into scrape runners.
package source

import (
	"log/slog"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/scrape"
	"github.com/WessleyAI/wessley-listings/engine/source/ikman"
	"github.com/WessleyAI/wessley-listings/engine/source/riyasewana"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/config"
)

// Order is the default aggregation order. Base URLs are given in this order.
var Order = []vehicle.Source{vehicle.SourceRiyasewana, vehicle.SourceIkman}

// Runner returns the runner for one source, or nil for an unknown source.
func Runner(src vehicle.Source, f fetch.Fetcher, opts scrape.Options) scrape.Runner {
	switch src {
	case vehicle.SourceRiyasewana:
		return scrape.NewSource[riyasewana.RawListing, riyasewana.Detail](riyasewana.New(), f, opts)
	case vehicle.SourceIkman:
		return scrape.NewSource[ikman.RawListing, ikman.Detail](ikman.New(), f, opts)
	}
	return nil
}

// Runners returns one runner per source in Order.
func Runners(f fetch.Fetcher, opts scrape.Options) []scrape.Runner {
	runners := make([]scrape.Runner, 0, len(Order))
	for _, src := range Order {
		runners = append(runners, Runner(src, f, opts))
	}
	return runners
}

// NewAggregator builds the default aggregator: riyasewana, then ikman.
func NewAggregator(f fetch.Fetcher, opts scrape.Options) *scrape.Aggregator {
	return scrape.NewAggregator(Runners(f, opts), opts)
}

// FetchOptions maps the fetch section of cfg onto fetcher options.
func FetchOptions(cfg config.FetchConfig) fetch.Options {
	return fetch.Options{
		UserAgent:    cfg.UserAgent,
		Headers:      cfg.Headers,
		Timeout:      cfg.Timeout.Duration,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Retry:        cfg.Retry.RetryOpts(),
	}
}

// ScrapeOptions maps the scrape section of cfg onto engine options.
func ScrapeOptions(cfg config.ScrapeConfig, logger *slog.Logger, m *scrape.Metrics) scrape.Options {
	return scrape.Options{
		PageConcurrency:   cfg.PageConcurrency,
		DetailConcurrency: cfg.DetailConcurrency,
		IsolateFailures:   cfg.IsolateFailures,
		Logger:            logger,
		Metrics:           m,
	}
}
