package filter

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/s0up4200/filmforum/filmapi"
)

// EvaluatorOption configures an evaluator
type EvaluatorOption func(*ConcurrentEvaluator)

// WithWorkers sets the number of worker goroutines
func WithWorkers(workers int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if workers > 0 {
			e.workers = workers
		}
	}
}

// WithBatchSize sets the chunk size below which evaluation stays sequential
func WithBatchSize(size int) EvaluatorOption {
	return func(e *ConcurrentEvaluator) {
		if size > 0 {
			e.batchSize = size
		}
	}
}

// ConcurrentEvaluator evaluates filters over film lists, splitting large
// lists into chunks processed in parallel. Output order always equals input
// order.
type ConcurrentEvaluator struct {
	workers   int
	batchSize int
}

// NewConcurrentEvaluator creates a new concurrent evaluator
func NewConcurrentEvaluator(opts ...EvaluatorOption) *ConcurrentEvaluator {
	e := &ConcurrentEvaluator{
		workers:   runtime.GOMAXPROCS(0),
		batchSize: 100,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Evaluate returns the films matching filter
func (e *ConcurrentEvaluator) Evaluate(ctx context.Context, filter CompiledFilter, films []filmapi.Film) ([]filmapi.Film, error) {
	if len(films) == 0 {
		return []filmapi.Film{}, nil
	}

	if len(films) <= e.batchSize {
		return evaluateSequential(filter, films), nil
	}

	return e.evaluateConcurrent(ctx, filter, films)
}

func evaluateSequential(filter CompiledFilter, films []filmapi.Film) []filmapi.Film {
	matches := make([]filmapi.Film, 0, len(films))
	for _, film := range films {
		if filter.Match(film) {
			matches = append(matches, film)
		}
	}
	return matches
}

// evaluateConcurrent marks matches in a slot per film, so no locking is needed
func (e *ConcurrentEvaluator) evaluateConcurrent(ctx context.Context, filter CompiledFilter, films []filmapi.Film) ([]filmapi.Film, error) {
	matched := make([]bool, len(films))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for start := 0; start < len(films); start += e.batchSize {
		end := min(start+e.batchSize, len(films))

		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				matched[i] = filter.Match(films[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	matches := make([]filmapi.Film, 0, len(films))
	for i, ok := range matched {
		if ok {
			matches = append(matches, films[i])
		}
	}
	return matches, nil
}
