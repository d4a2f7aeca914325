package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/nao1215/pricewatch/internal/model"
)

// SummaryWriter outputs a terminal table summarizing watch results,
// followed by the listings that appeared or vanished since the previous run.
type SummaryWriter struct {
	baseWriter

	// showChanges lists new and removed items below the table.
	showChanges bool
}

// SummaryWriterOption configures a SummaryWriter.
type SummaryWriterOption func(*SummaryWriter)

// WithChanges controls whether new and removed items are listed.
// Enabled by default.
func WithChanges(show bool) SummaryWriterOption {
	return func(w *SummaryWriter) {
		w.showChanges = show
	}
}

// NewSummaryWriter creates a SummaryWriter that outputs to the given writer.
func NewSummaryWriter(output io.Writer, opts ...SummaryWriterOption) *SummaryWriter {
	w := &SummaryWriter{
		baseWriter:  newBaseWriter(output),
		showChanges: true,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary of a single result.
func (w *SummaryWriter) Write(result *model.WatchResult) (int, error) {
	return w.WriteAll([]*model.WatchResult{result})
}

// WriteAll outputs one table row per result plus a totals footer.
func (w *SummaryWriter) WriteAll(results []*model.WatchResult) (int, error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Watch", "Fetched", "Matched", "New", "Gone", "Pages", "Duration", "Status"})

	var fetched, matched, added, removed, pages int
	for _, r := range results {
		newCount, goneCount := "-", "-"
		if r.Changes != nil {
			newCount = strconv.Itoa(r.Changes.AddedCount)
			goneCount = strconv.Itoa(r.Changes.RemovedCount)
			added += r.Changes.AddedCount
			removed += r.Changes.RemovedCount
		}
		fetched += r.FetchedCount()
		matched += r.MatchCount()
		pages += r.Pages

		t.AppendRow(table.Row{
			r.Label,
			r.FetchedCount(),
			r.MatchCount(),
			newCount,
			goneCount,
			r.Pages,
			r.Duration().Round(time.Millisecond).String(),
			statusText(r),
		})
	}
	t.AppendFooter(table.Row{"Total", fetched, matched, added, removed, pages, "", ""})

	var sb strings.Builder
	sb.WriteString(t.Render())
	sb.WriteString("\n")

	if w.showChanges {
		w.writeChanges(&sb, results)
	}

	return io.WriteString(w.output, sb.String())
}

// writeChanges lists added ("+") and removed ("-") items per watch.
func (w *SummaryWriter) writeChanges(sb *strings.Builder, results []*model.WatchResult) {
	for _, r := range results {
		if !r.Changes.HasChanges() {
			continue
		}
		fmt.Fprintf(sb, "\nChanges for '%s':\n", r.Label)
		for _, it := range r.Changes.Added {
			fmt.Fprintf(sb, "  + %s\n", describe(it))
		}
		for _, it := range r.Changes.Removed {
			fmt.Fprintf(sb, "  - %s\n", describe(it))
		}
	}
}
