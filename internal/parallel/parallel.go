// Package parallel provides bounded fan-out over independent work items.
package parallel

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/minbpe/internal/envconfig"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on MINBPE_NUM_WORKERS (CPU count when unset).
func DefaultConfig() Config {
	n := envconfig.NumWorkers()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 16,
	}
}

// Sequential returns a Config that runs everything on the calling goroutine.
func Sequential() Config {
	return Config{NumWorkers: 1, MinChunkSize: 1}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// ForErr is For for fallible work. At most cfg.NumWorkers chunks run at
// once; a chunk stops at its first failure. The error of the lowest failing
// index is returned.
func ForErr(n int, f func(i int) error, cfg Config) error {
	if !cfg.Enabled || cfg.NumWorkers < 2 || n < cfg.MinChunkSize {
		for i := 0; i < n; i++ {
			if err := f(i); err != nil {
				return err
			}
		}
		return nil
	}

	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
	errs := make([]error, (n+chunkSize-1)/chunkSize)

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	for c := range errs {
		g.Go(func() error {
			start, end := c*chunkSize, min((c+1)*chunkSize, n)
			for i := start; i < end; i++ {
				if err := f(i); err != nil {
					errs[c] = err
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}

	// Wait reports whichever chunk failed first in time.
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
