package scrape

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/WessleyAI/wessley-listings/engine/fetch"
	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/fn"
)

// Source runs one adapter over a fetcher. It implements Runner.
type Source[R, D any] struct {
	adapter Adapter[R, D]
	fetcher fetch.Fetcher
	opts    Options
}

// NewSource binds an adapter to a fetcher.
func NewSource[R, D any](adapter Adapter[R, D], fetcher fetch.Fetcher, opts Options) *Source[R, D] {
	return &Source[R, D]{adapter: adapter, fetcher: fetcher, opts: opts.withDefaults()}
}

// Source reports which site this runner scrapes.
func (s *Source[R, D]) Source() vehicle.Source { return s.adapter.Source() }

type runInput struct {
	baseURL           string
	ignoreIndividuals bool
}

// Scrape visits every list page reachable from baseURL, optionally enriches
// each listing from its detail page, and returns the normalized vehicles in
// page order. Any failure aborts the whole source: no partial result is
// returned. An empty baseURL yields an empty result.
func (s *Source[R, D]) Scrape(ctx context.Context, baseURL string, ignoreIndividuals bool) (vehicle.Scraped, error) {
	src := s.adapter.Source()
	start := s.opts.Now()
	if strings.TrimSpace(baseURL) == "" {
		return vehicle.NewScraped(src, baseURL, nil, start), nil
	}

	stage := fn.TracedStage("scrape."+string(src), fn.Stage[runInput, []vehicle.Vehicle](s.run),
		attribute.String("scrape.source", string(src)),
		attribute.String("scrape.base_url", baseURL),
		attribute.Bool("scrape.ignore_individuals", ignoreIndividuals),
	)

	log := s.opts.Logger.With("source", src, "run_id", uuid.NewString())
	log.Debug("source scrape started", "base_url", baseURL)

	results, err := stage(ctx, runInput{baseURL: baseURL, ignoreIndividuals: ignoreIndividuals}).Unwrap()
	s.opts.Metrics.observe(src, start)
	if err != nil {
		s.opts.Metrics.failed(src)
		log.Debug("source scrape failed", "error", err, "duration", time.Since(start))
		return vehicle.Scraped{}, err
	}
	s.opts.Metrics.listings(src, len(results))
	log.Debug("source scrape finished", "count", len(results), "duration", time.Since(start))
	return vehicle.NewScraped(src, baseURL, results, start), nil
}

func (s *Source[R, D]) run(ctx context.Context, in runInput) fn.Result[[]vehicle.Vehicle] {
	first := s.adapter.FirstPage(in.baseURL)
	lp, err := s.listPage(ctx, first, in.baseURL)
	if err != nil {
		return fn.Err[[]vehicle.Vehicle](err)
	}

	rest, err := fn.ParMap(ctx, lp.rest, s.opts.PageConcurrency, func(ctx context.Context, _ int, ref PageRef) ([]vehicle.Vehicle, error) {
		p, err := s.listPage(ctx, ref, in.baseURL)
		return p.vehicles, err
	})
	if err != nil {
		return fn.Err[[]vehicle.Vehicle](err)
	}
	all := fn.Flatten(append([][]vehicle.Vehicle{lp.vehicles}, rest...))

	if !in.ignoreIndividuals {
		if err := s.enrich(ctx, all); err != nil {
			return fn.Err[[]vehicle.Vehicle](err)
		}
	}

	for _, v := range all {
		if err := vehicle.Validate(v); err != nil {
			return fn.Err[[]vehicle.Vehicle](s.fail(PageRef{ID: v.Meta.PageID, URL: v.Meta.SourceURL}, err))
		}
	}
	return fn.Ok(all)
}

type pageResult struct {
	vehicles []vehicle.Vehicle
	rest     Plan
}

// listPage fetches, extracts and normalizes one list page.
func (s *Source[R, D]) listPage(ctx context.Context, ref PageRef, baseURL string) (pageResult, error) {
	doc, err := s.fetcher.Fetch(ctx, ref.URL)
	if err != nil {
		return pageResult{}, s.fail(ref, err)
	}
	s.opts.Metrics.pageFetched(s.adapter.Source())

	lp, err := s.adapter.ExtractListPage(doc, ref)
	if err != nil {
		return pageResult{}, s.fail(ref, err)
	}

	pc := PageContext{Page: ref, BaseURL: baseURL, FetchedAt: doc.FetchedAt}
	vs := fn.Map(lp.Entries, func(raw R) vehicle.Vehicle { return s.adapter.Normalize(raw, pc) })
	s.opts.Logger.Debug("list page scraped",
		slog.String("source", string(s.adapter.Source())),
		slog.Int("page", ref.ID),
		slog.Int("entries", len(vs)),
		slog.Int("discovered", len(lp.Rest)),
	)
	return pageResult{vehicles: vs, rest: lp.Rest}, nil
}

func (s *Source[R, D]) fail(ref PageRef, err error) error {
	return &SourceScrapeError{Source: s.adapter.Source(), Page: ref.ID, URL: ref.URL, Err: err}
}
