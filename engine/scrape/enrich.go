package scrape

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/WessleyAI/wessley-listings/engine/vehicle"
)

// enrich fetches the detail page of every vehicle that has one and merges it
// in place. A bounded pool of workers drains an index queue; each worker only
// writes the slot it was handed, so order is untouched. The first failure
// cancels the rest.
func (s *Source[R, D]) enrich(ctx context.Context, vs []vehicle.Vehicle) error {
	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int)

	g.Go(func() error {
		defer close(jobs)
		for i := range vs {
			if vs[i].Meta.IndividualURL == "" {
				continue
			}
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < s.opts.DetailConcurrency; w++ {
		g.Go(func() error {
			for i := range jobs {
				if err := s.enrichOne(gctx, &vs[i]); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Source[R, D]) enrichOne(ctx context.Context, v *vehicle.Vehicle) error {
	ref := PageRef{ID: v.Meta.PageID, URL: v.Meta.SourceURL}
	url := v.Meta.IndividualURL

	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return s.fail(ref, &EnrichmentError{ListingURL: url, Err: err})
	}
	s.opts.Metrics.detailFetched(s.adapter.Source())

	detail, err := s.adapter.ExtractDetail(doc)
	if err != nil {
		return s.fail(ref, &EnrichmentError{ListingURL: url, Err: err})
	}
	s.adapter.Merge(v, detail)
	return nil
}
