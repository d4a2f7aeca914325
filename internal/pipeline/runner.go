package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pricewatch/internal/model"
)

// Factory creates a fresh pipeline for one watch.
// Every watch gets its own pipeline so no aggregation state is shared.
type Factory func(w model.Watch) *Pipeline

// EmitFunc receives each finished result. The Runner never calls it
// concurrently, even when watches run in parallel.
type EmitFunc func(result *model.WatchResult)

// Runner executes the pipeline of every watch and emits the results.
type Runner struct {
	// factory creates the pipeline for each watch.
	factory Factory

	// workers is the number of watches processed concurrently.
	// One (the default) processes watches strictly in configured order.
	workers int

	logger *slog.Logger
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets how many watches run at the same time.
// Values below one are ignored.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a Runner that builds pipelines with factory.
func NewRunner(factory Factory, opts ...RunnerOption) *Runner {
	r := &Runner{
		factory: factory,
		workers: 1,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Run processes every watch and calls emit once per finished watch.
//
// A watch that fails or matches nothing never stops the watches after it;
// its result carries the error. Cancellation stops the run between
// watches and returns ctx.Err(), also when it happens during the last
// watch. The returned results are in configured order and include only
// the watches that were started.
func (r *Runner) Run(ctx context.Context, watches []model.Watch, emit EmitFunc) ([]*model.WatchResult, error) {
	if emit == nil {
		emit = func(*model.WatchResult) {}
	}

	r.logger.Info("starting run",
		"watches", len(watches),
		"workers", r.workers,
	)
	startTime := time.Now()

	var (
		results []*model.WatchResult
		err     error
	)
	if r.workers > 1 && len(watches) > 1 {
		results, err = r.runConcurrent(ctx, watches, emit)
	} else {
		results, err = r.runSequential(ctx, watches, emit)
	}

	r.logger.Info("run complete",
		"watches", len(results),
		"elapsed", time.Since(startTime),
	)
	return results, err
}

// runSequential processes watches one at a time in configured order.
func (r *Runner) runSequential(ctx context.Context, watches []model.Watch, emit EmitFunc) ([]*model.WatchResult, error) {
	results := make([]*model.WatchResult, 0, len(watches))

	for _, w := range watches {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		result := r.runOne(ctx, w)
		results = append(results, result)
		emit(result)
	}
	return results, ctx.Err()
}

// runConcurrent processes watches on a bounded errgroup.
func (r *Runner) runConcurrent(ctx context.Context, watches []model.Watch, emit EmitFunc) ([]*model.WatchResult, error) {
	slots := make([]*model.WatchResult, len(watches))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, w := range watches {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			result := r.runOne(gctx, w)

			mu.Lock()
			defer mu.Unlock()
			slots[i] = result
			emit(result)

			// Failures are recorded in the result; other watches continue.
			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}

	results := make([]*model.WatchResult, 0, len(watches))
	for _, result := range slots {
		if result != nil {
			results = append(results, result)
		}
	}
	return results, err
}

// runOne executes a fresh pipeline for a single watch.
func (r *Runner) runOne(ctx context.Context, w model.Watch) *model.WatchResult {
	result := model.NewWatchResult(w)
	p := r.factory(w)

	err := p.Execute(ctx, result)
	if err == nil {
		err = result.Error
	}
	if err != nil {
		r.logger.Warn("watch failed",
			"watch", w.Label,
			"error", err,
		)
	}

	r.logger.Info("watch completed",
		"watch", w.Label,
		"fetched", result.FetchedCount(),
		"matched", result.MatchCount(),
		"duration", result.Duration(),
	)
	return result
}
