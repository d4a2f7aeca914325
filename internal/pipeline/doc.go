// Package pipeline turns configured watches into filtered results.
//
// Each watch is processed by its own Pipeline, an ordered list of Steps
// that fill in a model.WatchResult:
//   - AggregateStep walks the paginated listing API through an Aggregator
//   - FilterStep keeps the items that satisfy the watch's criteria
//
// A Runner executes one pipeline per watch, in configured order, and hands
// every finished result to a callback. By default watches run one after
// another; with more than one worker they run concurrently on an errgroup
// while the callback is still invoked one result at a time.
//
// Design decision: The Aggregator is an explicit state machine
// (aggregation.step) rather than a loop with inline conditions. The
// stopping rules depend on optional and sometimes inconsistent counters
// from the API, and keeping them in one method makes the precedence of
// the rules visible and testable.
package pipeline
