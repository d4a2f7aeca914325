package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/nao1215/pricewatch/internal/model"
)

// JSONWriter outputs the matching items of a watch as a JSON array.
// Each item is written exactly as the API returned it; the array is
// empty (never null) when nothing matched.
type JSONWriter struct {
	baseWriter

	// indent is the indentation string for each level.
	// An empty string produces compact output.
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent sets the indentation string. The default is two spaces.
func WithIndent(indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = indent
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
		indent:     "  ",
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs result.Filtered.
func (w *JSONWriter) Write(result *model.WatchResult) (int, error) {
	return w.WriteItems(result.Filtered)
}

// WriteItems outputs items as a JSON array followed by a newline.
// HTML characters are not escaped so URLs stay readable.
func (w *JSONWriter) WriteItems(items []model.Item) (int, error) {
	if items == nil {
		items = []model.Item{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent != "" {
		enc.SetIndent("", w.indent)
	}
	if err := enc.Encode(items); err != nil {
		return 0, fmt.Errorf("failed to encode items: %w", err)
	}

	return w.output.Write(buf.Bytes())
}

// ReadItems decodes a JSON array of items, as written by JSONWriter.
func ReadItems(r io.Reader) ([]model.Item, error) {
	var items []model.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}
