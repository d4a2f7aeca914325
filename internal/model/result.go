package model

import (
	"context"
	"errors"
	"time"
)

// WatchResult carries everything produced while processing one watch.
// It is created by the runner, filled in by the pipeline steps and
// finally handed to the report emitter.
//
// Design decision: One mutable container flows through the steps
// instead of each step returning its own value. This keeps the step
// interface uniform and lets a failed or cancelled run still be
// reported with whatever was collected.
type WatchResult struct {
	// Watch is the configuration this result was produced for.
	Watch Watch `json:"-"`

	// Label mirrors Watch.Label for serialized summaries.
	Label string `json:"label"`

	// Aggregated is every item fetched across all pages, in fetch order.
	Aggregated []Item `json:"-"`

	// Filtered is the subsequence of Aggregated that passed all filters.
	Filtered []Item `json:"-"`

	// Pages is the number of page requests issued.
	Pages int `json:"pages"`

	// FailedPages counts requests replaced by an empty page.
	FailedPages int `json:"failed_pages"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// PerformedSteps lists the pipeline steps that ran, in order.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Changes compares Filtered with the previous report, when one exists.
	Changes *Changes `json:"changes,omitempty"`

	// TimedOut is set when the run was cancelled before all steps finished.
	TimedOut bool `json:"timed_out,omitempty"`

	// Error is the last step error. It is not serialized.
	Error error `json:"-"`

	// ErrorMessage is the serialized form of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// NewWatchResult creates an empty result for the given watch.
func NewWatchResult(w Watch) *WatchResult {
	return &WatchResult{
		Watch:      w,
		Label:      w.Label,
		Aggregated: []Item{},
		Filtered:   []Item{},
		StartedAt:  time.Now(),
	}
}

// MatchCount returns the number of items that passed the filters.
func (r *WatchResult) MatchCount() int {
	return len(r.Filtered)
}

// FetchedCount returns the number of items fetched before filtering.
func (r *WatchResult) FetchedCount() int {
	return len(r.Aggregated)
}

// Duration returns how long the run took, or zero if it has not finished.
func (r *WatchResult) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Interrupted reports whether the run was cancelled or hit its deadline
// before it finished. Its results are partial.
func (r *WatchResult) Interrupted() bool {
	return r.TimedOut ||
		errors.Is(r.Error, context.Canceled) ||
		errors.Is(r.Error, context.DeadlineExceeded)
}

// Complete reports whether every page was fetched without error, so the
// matches can be compared with an earlier run.
func (r *WatchResult) Complete() bool {
	return !r.Interrupted() && r.Error == nil && r.FailedPages == 0
}
