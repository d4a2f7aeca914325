package pipeline

import "errors"

// ErrAllPagesFailed is returned by AggregateStep when no page of the
// query could be fetched. The watch still produces an empty report.
var ErrAllPagesFailed = errors.New("every page request failed")
