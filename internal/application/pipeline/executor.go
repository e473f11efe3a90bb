package pipeline

import (
	"context"
	"sync"
)

// forEach fans items out to at most workers goroutines and waits for all of
// them. fn receives the item index; it must write its result into its own
// slot and report failures through the item itself, never by panicking.
// Results merge by key afterwards, so completion order does not matter.
func forEach(ctx context.Context, workers, n int, fn func(ctx context.Context, i int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(ctx, i)
			}
		}()
	}

	for i := 0; i < n; i++ {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
