package workerpool

import (
	"context"
	"sync"
)

// JobResult pairs a fanned-out item's result with its error, keeping the two
// together as they flow back in item order.
type JobResult[T any] struct {
	Result T
	Err    error
}

// Run executes fn for every item in items, bounded to at most maxConcurrent
// goroutines in flight at once, and returns one result per item in the same
// order. Callers fanning out a known, fixed batch of chain reads for a single
// request use this rather than standing up a persistent worker pool they
// would have to tear down immediately after.
//
// fn is expected to respect ctx cancellation. Run itself never cancels ctx
// and never fails the batch because one item errored; callers inspect the
// per-item error in the returned slice.
func Run[T, R any](ctx context.Context, maxConcurrent int, items []T, fn func(context.Context, T) (R, error)) []JobResult[R] {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([]JobResult[R], len(items))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, item := range items {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()

			res, err := fn(ctx, item)
			results[i] = JobResult[R]{Result: res, Err: err}
		}(i, item)
	}

	wg.Wait()

	return results
}
