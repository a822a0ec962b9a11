package scrape

import (
	"context"

	"github.com/WessleyAI/wessley-listings/engine/vehicle"
	"github.com/WessleyAI/wessley-listings/pkg/fn"
)

// Aggregator runs several sources concurrently and concatenates their
// results in runner order.
type Aggregator struct {
	runners []Runner
	opts    Options
}

// NewAggregator builds an Aggregator over runners. Base URLs passed to Scrape
// are matched to runners by position.
func NewAggregator(runners []Runner, opts Options) *Aggregator {
	return &Aggregator{runners: runners, opts: opts.withDefaults()}
}

// Sources lists the configured sources in aggregation order.
func (a *Aggregator) Sources() []vehicle.Source {
	return fn.Map(a.runners, func(r Runner) vehicle.Source { return r.Source() })
}

type sourceOutcome struct {
	scraped vehicle.Scraped
	failure *vehicle.SourceFailure
}

// Scrape runs runner i against baseURLs[i]. Missing or empty URLs skip their
// source. Unless IsolateFailures is set, the first failing source cancels the
// others and its error is returned.
func (a *Aggregator) Scrape(ctx context.Context, baseURLs []string, ignoreIndividuals bool) (vehicle.ScrapeResult, error) {
	if len(a.runners) == 0 {
		return vehicle.ScrapeResult{}, ErrNoSources
	}
	if len(baseURLs) > len(a.runners) {
		return vehicle.ScrapeResult{}, ErrTooManyURLs
	}
	start := a.opts.Now()

	jobs := make([]func(context.Context) (sourceOutcome, error), len(a.runners))
	for i, r := range a.runners {
		var baseURL string
		if i < len(baseURLs) {
			baseURL = baseURLs[i]
		}
		jobs[i] = func(ctx context.Context) (sourceOutcome, error) {
			s, err := r.Scrape(ctx, baseURL, ignoreIndividuals)
			if err == nil {
				return sourceOutcome{scraped: s}, nil
			}
			if !a.opts.IsolateFailures || ctx.Err() != nil {
				return sourceOutcome{}, err
			}
			a.opts.Logger.Debug("source failed", "source", r.Source(), "error", err)
			f := Failure(r.Source(), baseURL, err)
			return sourceOutcome{failure: &f}, nil
		}
	}

	outcomes, err := fn.FanOut(ctx, jobs...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return vehicle.ScrapeResult{}, ctxErr
		}
		return vehicle.ScrapeResult{}, err
	}

	var parts []vehicle.Scraped
	var failures []vehicle.SourceFailure
	for _, o := range outcomes {
		if o.failure != nil {
			failures = append(failures, *o.failure)
			continue
		}
		parts = append(parts, o.scraped)
	}
	result := vehicle.Merge(start, parts...)
	result.Failures = failures
	a.opts.Logger.Debug("aggregation finished", "count", result.Count, "failures", len(failures))
	return result, nil
}
