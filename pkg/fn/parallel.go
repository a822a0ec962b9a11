package fn

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ParMap applies f to each item with at most workers calls in flight and
// returns the outputs in input order. The first error cancels the context
// handed to the remaining calls and is returned; no partial output is
// returned alongside it.
func ParMap[T, U any](ctx context.Context, items []T, workers int, f func(ctx context.Context, i int, item T) (U, error)) ([]U, error) {
	out := make([]U, len(items))
	if len(items) == 0 {
		return out, ctx.Err()
	}
	if workers <= 0 || workers > len(items) {
		workers = len(items)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := f(gctx, i, item)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FanOut runs each function concurrently and returns their values in order.
// It fails with the first error, cancelling the others.
func FanOut[T any](ctx context.Context, fns ...func(context.Context) (T, error)) ([]T, error) {
	return ParMap(ctx, fns, len(fns), func(ctx context.Context, _ int, f func(context.Context) (T, error)) (T, error) {
		return f(ctx)
	})
}
