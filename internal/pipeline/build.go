package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dgallion1/texsite/internal/config"
	"github.com/dgallion1/texsite/internal/extract"
)

// Builder runs the docs and data builds for one configuration.
type Builder struct {
	cfg   config.Config
	log   *slog.Logger
	stats *extract.RowStats
}

func NewBuilder(cfg config.Config, log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{cfg: cfg, log: log, stats: extract.NewRowStats()}
}

// Stats returns the row statistics of the most recent data build.
func (b *Builder) Stats() *extract.RowStats {
	return b.stats
}

// fanOut runs fn for units 0..n-1 on at most limit goroutines and returns
// the results in unit order. The first failing unit (in unit order) wins;
// after any failure or cancellation no further units are scheduled.
func fanOut[T any](ctx context.Context, n, limit int, fn func(ctx context.Context, i int) (T, error)) ([]T, error) {
	if limit < 1 {
		limit = 1
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]T, n)
	errs := make([]error, n)
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

schedule:
	for i := range n {
		select {
		case <-runCtx.Done():
			break schedule
		case sem <- struct{}{}:
		}
		if runCtx.Err() != nil {
			<-sem
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			res, err := fn(runCtx, i)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			results[i] = res
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
