// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"runtime"
	"sync"
)

// runWorkerPool calls do(i) for every index in [0, n) using up to
// workers goroutines (GOMAXPROCS if workers <= 0), the same
// semaphore-bounded fan-out scanner.Walk uses for directory listing.
// Results land in a slice indexed by i, so callers see the same order
// a sequential loop would have produced regardless of how the workers
// interleaved.
//
// If failFast is true, runWorkerPool stops dispatching new work after
// the first non-nil error do returns; work already dispatched still
// runs to completion.
func runWorkerPool(ctx context.Context, n, workers int, failFast bool, do func(i int) error) []error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	sem := make(chan struct{}, workers)
	results := make([]error, n)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
dispatch:
	for i := 0; i < n; i++ {
		if failFast && ctx.Err() != nil {
			break dispatch
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break dispatch
		}

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = do(i)
			if failFast && results[i] != nil {
				cancel()
			}
		}(i)
	}
	wg.Wait()

	return results
}
