package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nao1215/pricewatch/internal/filter"
	"github.com/nao1215/pricewatch/internal/model"
)

// AggregateStep collects every item of the watch's query.
type AggregateStep struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

// NewAggregateStep creates an AggregateStep using the given aggregator.
func NewAggregateStep(aggregator *Aggregator, logger *slog.Logger) *AggregateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregateStep{
		aggregator: aggregator,
		logger:     logger,
	}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do fetches all pages and stores them in result.Aggregated.
// Items collected before a cancellation or failure are kept.
func (s *AggregateStep) Do(ctx context.Context, result *model.WatchResult) error {
	agg := s.aggregator.Aggregate(ctx, result.Watch.QueryPath)

	result.Aggregated = agg.Items
	result.Pages = agg.Pages
	result.FailedPages = agg.FailedPages

	s.logger.Info("aggregated listing",
		"watch", result.Label,
		"items", len(agg.Items),
		"pages", agg.Pages,
		"reason", string(agg.Reason),
	)

	if agg.Reason == StopCancelled {
		result.TimedOut = true
		return ctx.Err()
	}
	if agg.Pages > 0 && agg.FailedPages == agg.Pages {
		return fmt.Errorf("%w: %s", ErrAllPagesFailed, result.Watch.QueryPath)
	}
	return nil
}

// FilterStep applies the watch's criteria to the aggregated items.
type FilterStep struct {
	logger *slog.Logger
}

// NewFilterStep creates a FilterStep.
func NewFilterStep(logger *slog.Logger) *FilterStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &FilterStep{logger: logger}
}

// Name returns the step name.
func (s *FilterStep) Name() string {
	return "filter"
}

// Do stores the matching subsequence of result.Aggregated in result.Filtered.
func (s *FilterStep) Do(_ context.Context, result *model.WatchResult) error {
	f := filter.New(result.Watch)

	matched := make([]model.Item, 0, len(result.Aggregated))
	rejected := make(map[filter.Reason]int)
	unpriced := 0
	for _, it := range result.Aggregated {
		reason := f.Check(it)
		if reason == filter.ReasonNone {
			matched = append(matched, it)
			if !filter.HasNumericPrice(it.EffectivePrice()) {
				unpriced++
			}
			continue
		}
		rejected[reason]++
	}
	result.Filtered = matched

	if unpriced > 0 {
		s.logger.Warn("matched items without a readable price were kept",
			"watch", result.Label,
			"count", unpriced,
		)
	}

	s.logger.Debug("filtered listing",
		"watch", result.Label,
		"matched", len(matched),
		"rejectedPrice", rejected[filter.ReasonPrice],
		"rejectedInclude", rejected[filter.ReasonInclude],
		"rejectedExclude", rejected[filter.ReasonExclude],
		"rejectedCity", rejected[filter.ReasonCity],
	)
	return nil
}

// DefaultPipeline creates the standard pipeline for one watch:
// aggregate, then filter.
func DefaultPipeline(fetcher PageFetcher, opts []Option, aggOpts ...AggregatorOption) *Pipeline {
	p := New(opts...)

	aggOpts = append([]AggregatorOption{WithAggregatorLogger(p.logger)}, aggOpts...)
	aggregator := NewAggregator(fetcher, aggOpts...)

	p.AddSteps(
		NewAggregateStep(aggregator, p.logger),
		NewFilterStep(p.logger),
	)
	return p
}
