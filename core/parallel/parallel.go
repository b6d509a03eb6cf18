// Package parallel provides the fork-join helpers used by the sketching and
// histogram-build passes. Work is split into contiguous, roughly equal
// chunks; there is no work stealing and no cancellation, a pass either
// completes or the process aborts on a contract violation.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across NumCPU workers and runs fn on each
// contiguous range (start, end).
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeWorkers(runtime.NumCPU(), items, fn)
}

// ParallelizeWorkers is Parallelize with an explicit worker count, so passes
// can be made deterministic (workers=1) in tests and sized by the caller's
// thread budget in training loops.
func ParallelizeWorkers(workers, items int, fn func(start, end int)) {
	ParallelizeIndexed(workers, items, func(_, start, end int) {
		fn(start, end)
	})
}

// ParallelizeIndexed is ParallelizeWorkers but fn also receives the worker
// index, for workers that own per-thread scratch state. Worker i always gets
// the i-th contiguous chunk, so the split is deterministic for a given
// (workers, items) pair.
func ParallelizeIndexed(workers, items int, fn func(worker, start, end int)) {
	if items == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}
	if workers > items {
		workers = items // No need for more workers than items
	}

	// Number of items each worker handles (ceiling division).
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}

		// Skip if there's no range to handle.
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(w, s, e int) {
			defer wg.Done()
			fn(w, s, e)
		}(i, start, end)
	}

	wg.Wait()
}

// ParallelizeWithThreshold runs sequentially below the threshold and in
// parallel above it.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
