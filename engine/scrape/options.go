package scrape

import (
	"io"
	"log/slog"
	"time"
)

// Options tunes a source run or an aggregation.
type Options struct {
	// PageConcurrency bounds in-flight list page fetches after the first.
	PageConcurrency int
	// DetailConcurrency bounds enrichment workers per source.
	DetailConcurrency int
	// IsolateFailures makes the Aggregator report failed sources in
	// ScrapeResult.Failures instead of failing the whole call.
	IsolateFailures bool

	Logger  *slog.Logger
	Metrics *Metrics
	Now     func() time.Time
}

const defaultConcurrency = 4

func (o Options) withDefaults() Options {
	if o.PageConcurrency <= 0 {
		o.PageConcurrency = defaultConcurrency
	}
	if o.DetailConcurrency <= 0 {
		o.DetailConcurrency = defaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}
