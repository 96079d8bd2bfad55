package analysis

import (
	"context"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/cpu"
)

const jobBatchSize = 64

// Progress receives one Increment per finished job. *mpb.Bar satisfies it.
type Progress interface {
	Increment()
}

// Options configures a sweep run.
type Options struct {
	Seed     uint64   // Seed of every Monte Carlo pricing
	Workers  int      // DefaultWorkers when <= 0
	Progress Progress // Optional
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return DefaultWorkers()
}

// DefaultWorkers sizes the pool by physical cores, falling back to logical CPUs.
func DefaultWorkers() int {
	if n, err := cpu.Counts(false); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

type result[T any] struct {
	index int
	value T
	err   error
}

// processJobs evaluates fn for every index in [0, n) on a worker pool.
// Results keep index order. The first error cancels the remaining jobs.
func processJobs[T any](ctx context.Context, n, numWorkers int, bar Progress, fn func(i int) (T, error)) ([]T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	jobChan := make(chan int, jobBatchSize)
	resultChan := make(chan result[T], jobBatchSize)

	// Start workers
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobChan {
				if ctx.Err() != nil {
					continue // Drain after cancellation
				}
				v, err := fn(i)
				resultChan <- result[T]{index: i, value: v, err: err}
				if bar != nil {
					bar.Increment()
				}
			}
		}()
	}

	// Feed jobs to workers
	go func() {
		defer close(jobChan)
		for i := 0; i < n; i++ {
			select {
			case jobChan <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	// Collect results
	go func() {
		wg.Wait()
		close(resultChan)
	}()

	out := make([]T, n)
	var firstErr error
	for r := range resultChan {
		if r.err != nil {
			if firstErr == nil {
				firstErr = r.err
				cancel()
			}
			continue
		}
		out[r.index] = r.value
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
