package fn

import (
	"context"
	"math/rand"
	"time"
)

// RetryOpts configures retry behavior. The zero value makes exactly one attempt.
type RetryOpts struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Jitter      bool
	// ShouldRetry reports whether a failed attempt may be repeated.
	// nil retries every error.
	ShouldRetry func(error) bool
}

// Retry calls f until it succeeds, the attempts run out, ShouldRetry rejects
// the error, or ctx is done. Waits double between attempts up to MaxWait.
func Retry[T any](ctx context.Context, opts RetryOpts, f func(context.Context) Result[T]) Result[T] {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	wait := opts.InitialWait

	var result Result[T]
	for attempt := 1; attempt <= attempts; attempt++ {
		result = f(ctx)
		if result.IsOk() || attempt == attempts {
			return result
		}
		if opts.ShouldRetry != nil && !opts.ShouldRetry(result.err) {
			return result
		}

		sleepDur := wait
		if opts.Jitter && wait > 0 {
			sleepDur = time.Duration(float64(wait) * (0.5 + rand.Float64()))
		}
		if opts.MaxWait > 0 && sleepDur > opts.MaxWait {
			sleepDur = opts.MaxWait
		}

		select {
		case <-ctx.Done():
			return Err[T](ctx.Err())
		case <-time.After(sleepDur):
		}

		wait *= 2
		if opts.MaxWait > 0 && wait > opts.MaxWait {
			wait = opts.MaxWait
		}
	}
	return result
}
