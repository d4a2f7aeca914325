package pipeline

import (
	"context"
	"log/slog"
	"math"

	"github.com/nao1215/pricewatch/internal/model"
)

// PageFetcher fetches one page of a listing query.
// Implementations never fail: an unreachable or broken page is reported
// as an empty ListingPage.
type PageFetcher interface {
	FetchPage(ctx context.Context, queryPath string, page int) model.ListingPage
}

// StopReason records why an aggregation ended.
type StopReason string

const (
	// StopComplete means the running counter reached the total.
	StopComplete StopReason = "complete"

	// StopEmptyPage means a page came back empty while more items were
	// expected. This guards against counters that never converge.
	StopEmptyPage StopReason = "empty_page"

	// StopLastPage means the API's last_page indicator was reached.
	StopLastPage StopReason = "last_page"

	// StopMaxPages means the configured page ceiling was reached.
	StopMaxPages StopReason = "max_pages"

	// StopCancelled means the context was cancelled during the walk.
	StopCancelled StopReason = "cancelled"
)

// Aggregation is the outcome of walking all pages of one query.
type Aggregation struct {
	// Items holds every fetched item in fetch order, without deduplication.
	Items []model.Item

	// Pages is the number of pages requested.
	Pages int

	// FailedPages is the number of requests replaced by an empty page.
	FailedPages int

	// Seen and Total are the final values of the running counters.
	Seen  int
	Total int

	// Reason tells which rule ended the walk.
	Reason StopReason
}

// Aggregator drives a PageFetcher across the pages of one query.
// An Aggregator holds no per-query state and may be reused.
type Aggregator struct {
	fetcher  PageFetcher
	maxPages int
	logger   *slog.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithMaxPages bounds the number of pages requested per query.
// Zero or a negative value means no bound.
func WithMaxPages(n int) AggregatorOption {
	return func(a *Aggregator) {
		if n > 0 {
			a.maxPages = n
		}
	}
}

// WithAggregatorLogger sets a custom logger for the aggregator.
func WithAggregatorLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator that fetches pages with fetcher.
func NewAggregator(fetcher PageFetcher, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		fetcher: fetcher,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a
}

// Aggregate fetches pages of queryPath, starting at page 1, until the
// pagination rules say the result is complete. At least one page is
// always requested.
func (a *Aggregator) Aggregate(ctx context.Context, queryPath string) Aggregation {
	state := newAggregation()

	for {
		page := a.fetcher.FetchPage(ctx, queryPath, state.page)
		d := state.step(page)

		// A fetch interrupted by cancellation comes back as an empty page,
		// which the rules would otherwise read as the end of the listing.
		if ctx.Err() != nil {
			return a.finish(state, queryPath, StopCancelled)
		}
		if !d.next {
			return a.finish(state, queryPath, d.reason)
		}
		if a.maxPages > 0 && state.pages >= a.maxPages {
			a.logger.Warn("page limit reached before the listing was complete",
				"query", queryPath,
				"maxPages", a.maxPages,
				"seen", state.seen,
				"total", state.total,
			)
			return a.finish(state, queryPath, StopMaxPages)
		}
	}
}

func (a *Aggregator) finish(state *aggregation, queryPath string, reason StopReason) Aggregation {
	a.logger.Debug("aggregation finished",
		"query", queryPath,
		"pages", state.pages,
		"failedPages", state.failed,
		"items", len(state.items),
		"reason", string(reason),
	)
	return Aggregation{
		Items:       state.items,
		Pages:       state.pages,
		FailedPages: state.failed,
		Seen:        state.seen,
		Total:       state.total,
		Reason:      reason,
	}
}

// aggregation is the mutable state of one walk over the pages of a query.
type aggregation struct {
	// page is the page number to request next.
	page int

	items []model.Item

	// seen is the API's running counter ("to"), or the number of
	// aggregated items when the API does not report one.
	seen int

	// total is the API's total, or seen when the API does not report one.
	// It starts out unbounded.
	total int

	pages  int
	failed int
}

// decision is the outcome of one step of the state machine.
type decision struct {
	next   bool
	reason StopReason
}

func newAggregation() *aggregation {
	return &aggregation{
		page:  1,
		items: []model.Item{},
		total: math.MaxInt,
	}
}

// step folds one fetched page into the state and decides whether to
// request the next page. The rules are evaluated in this order:
//
//  1. an empty page while seen < total stops the walk
//  2. a reported (non-zero) last_page that the current page has reached
//     stops the walk, and the counters are reset to the aggregated length
//  3. seen < total requests the next page
//  4. otherwise the walk is complete
func (s *aggregation) step(p model.ListingPage) decision {
	s.pages++
	if p.Failed {
		s.failed++
	}

	s.items = append(s.items, p.Items...)

	if p.To != nil {
		s.seen = *p.To
	} else {
		s.seen = len(s.items)
	}
	if p.Total != nil {
		s.total = *p.Total
	} else {
		s.total = s.seen
	}

	if len(p.Items) == 0 && s.seen < s.total {
		return decision{reason: StopEmptyPage}
	}

	if p.LastPage != nil && *p.LastPage != 0 && s.page >= *p.LastPage {
		s.seen = len(s.items)
		s.total = len(s.items)
		return decision{reason: StopLastPage}
	}

	if s.seen < s.total {
		s.page++
		return decision{next: true}
	}

	return decision{reason: StopComplete}
}
