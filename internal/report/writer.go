package report

import (
	"io"
	"net/url"
	"strings"

	"github.com/nao1215/pricewatch/internal/model"
)

// Writer defines the interface for report output.
// Implementations write one watch result in a specific format.
type Writer interface {
	// Write outputs the result to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(result *model.WatchResult) (int, error)
}

// MultiWriter writes to multiple Writers in turn.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write results, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the result to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(result *model.WatchResult) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(result)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// cellText returns the text shown for a field in tables.
// Missing, null, false, empty and zero values are shown as blank.
func cellText(v model.Value) string {
	if v.Empty() {
		return ""
	}
	return v.String()
}

// linkTarget returns the item URL when it is safe to link to, or "".
// Only absolute http and https URLs qualify, so a javascript: or data:
// value from the API never becomes a clickable link.
func linkTarget(v model.Value) string {
	raw := strings.TrimSpace(cellText(v))
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return raw
}
