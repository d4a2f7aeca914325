package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/pricewatch/internal/model"
)

// MarkdownWriter outputs a watch result in Markdown format.
// The listing table has the same columns as the HTML report.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the result in Markdown format.
func (w *MarkdownWriter) Write(result *model.WatchResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeAlert(md, result)
	w.writeListings(md, result)
	w.writeRemoved(md, result)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the title and the run details table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *model.WatchResult) {
	md.H1(result.Label)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + result.Watch.QueryPath + "`"},
			{"Run Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Duration().Round(time.Millisecond).String()},
			{"Pages", strconv.Itoa(result.Pages)},
			{"Fetched", strconv.Itoa(result.FetchedCount())},
			{"Matched", strconv.Itoa(result.MatchCount())},
			{"Status", statusText(result)},
		},
	})
	md.PlainText("")
}

// writeAlert writes a callout describing what changed since the last run.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *model.WatchResult) {
	switch {
	case result.Error != nil && result.MatchCount() == 0:
		md.Warningf("The listing could not be fetched completely: %s", result.ErrorMessage)
	case result.Changes.HasChanges():
		md.Importantf("%d new and %d removed listing(s) since the previous run.",
			result.Changes.AddedCount, result.Changes.RemovedCount)
	case result.MatchCount() == 0:
		md.Note("No listings matched the filters.")
	case result.Changes != nil:
		md.Tip("No changes since the previous run.")
	default:
		return
	}
	md.PlainText("")
}

// writeListings writes the table of matching items.
func (w *MarkdownWriter) writeListings(md *markdown.Markdown, result *model.WatchResult) {
	md.H2("Listings")
	md.PlainText("")

	if result.MatchCount() == 0 {
		md.PlainText("No matching listings.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(result.Filtered))
	for i, it := range result.Filtered {
		link := escapeCell(cellText(it.URL))
		if href := linkTarget(it.URL); href != "" {
			link = "[link](" + href + ")"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			escapeCell(cellText(it.Title)),
			escapeCell(cellText(it.Price)),
			escapeCell(cellText(it.ActualPrice)),
			escapeCell(cellText(it.Article)),
			escapeCell(cellText(it.WarrantyTerm)),
			link,
			escapeCell(it.BranchName()),
		}
	}

	md.Table(markdown.TableSet{
		Header: columns,
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRemoved lists items that matched last time but no longer do.
func (w *MarkdownWriter) writeRemoved(md *markdown.Markdown, result *model.WatchResult) {
	if result.Changes == nil || len(result.Changes.Removed) == 0 {
		return
	}

	md.H2("No Longer Listed")
	md.PlainText("")

	titles := make([]string, 0, len(result.Changes.Removed))
	for _, it := range result.Changes.Removed {
		titles = append(titles, describe(it))
	}
	md.BulletList(titles...)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [pricewatch](https://github.com/nao1215/pricewatch)*")
}

// escapeCell keeps table cells on one line and protects column separators.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// statusText summarizes how a watch run ended.
func statusText(result *model.WatchResult) string {
	switch {
	case result.TimedOut:
		return "cancelled (partial results)"
	case result.Error != nil:
		return "error: " + result.ErrorMessage
	case result.FailedPages > 0:
		return strconv.Itoa(result.FailedPages) + " page(s) failed"
	default:
		return "complete"
	}
}

// describe returns a one-line description of an item for lists.
func describe(it model.Item) string {
	parts := make([]string, 0, 3)
	if title := cellText(it.Title); title != "" {
		parts = append(parts, title)
	} else {
		parts = append(parts, "(untitled)")
	}
	if price := cellText(it.EffectivePrice()); price != "" {
		parts = append(parts, price)
	}
	if u := cellText(it.URL); u != "" {
		parts = append(parts, u)
	}
	return strings.Join(parts, " | ")
}
