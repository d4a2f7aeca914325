package report

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/pricewatch/internal/model"
)

const (
	// dirPerm is used when creating the output directory.
	dirPerm = 0750

	// filePerm is used for report files.
	filePerm = 0644
)

// Emitter writes the report files of finished watches.
// Emit is not safe for concurrent use; the runner serializes calls.
type Emitter struct {
	// dir is the output directory. It is created on first use.
	dir string

	// html and markdown enable the optional formats. JSON is always written.
	html     bool
	markdown bool

	// console receives one line per written watch.
	console io.Writer

	logger *slog.Logger
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithHTML enables or disables the HTML report. Enabled by default.
func WithHTML(enabled bool) EmitterOption {
	return func(e *Emitter) {
		e.html = enabled
	}
}

// WithMarkdown enables or disables the Markdown report. Disabled by default.
func WithMarkdown(enabled bool) EmitterOption {
	return func(e *Emitter) {
		e.markdown = enabled
	}
}

// WithConsole sets where progress lines are printed. Defaults to os.Stdout.
func WithConsole(w io.Writer) EmitterOption {
	return func(e *Emitter) {
		e.console = w
	}
}

// WithEmitterLogger sets a custom logger.
func WithEmitterLogger(logger *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		e.logger = logger
	}
}

// NewEmitter creates an Emitter writing into dir.
func NewEmitter(dir string, opts ...EmitterOption) *Emitter {
	e := &Emitter{
		dir:     dir,
		html:    true,
		console: os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Dir returns the output directory.
func (e *Emitter) Dir() string {
	return e.dir
}

// Emit writes the reports of one watch and returns their paths.
//
// An interrupted run writes nothing, so the previous reports stay in
// place. Otherwise, before the JSON report is replaced, the previous one
// (if any) is read and compared with the new matches; the outcome is
// stored in result.Changes. Only complete runs are compared: a failed
// page would otherwise report the listings it held as removed.
func (e *Emitter) Emit(result *model.WatchResult) (Paths, error) {
	paths := NewPaths(e.dir, result.Label)

	if result.Interrupted() {
		e.logger.Warn("run interrupted, keeping previous reports",
			"watch", result.Label,
			"fetched", result.FetchedCount(),
		)
		fmt.Fprintf(e.console, "Results for '%s' not saved: run interrupted\n", result.Label)
		return paths, nil
	}

	if err := os.MkdirAll(e.dir, dirPerm); err != nil {
		return paths, fmt.Errorf("failed to create output directory: %w", err)
	}

	if result.Complete() {
		e.compareWithPrevious(paths.JSON, result)
	}

	written := []string{paths.JSON}
	if err := writeFile(paths.JSON, newJSONFileWriter, result); err != nil {
		return paths, err
	}
	if e.html {
		if err := writeFile(paths.HTML, newHTMLFileWriter, result); err != nil {
			return paths, err
		}
		written = append(written, paths.HTML)
	}
	if e.markdown {
		if err := writeFile(paths.Markdown, newMarkdownFileWriter, result); err != nil {
			return paths, err
		}
		written = append(written, paths.Markdown)
	}

	fmt.Fprintf(e.console, "Results for '%s' saved to %s\n", result.Label, joinPaths(written))
	return paths, nil
}

// compareWithPrevious fills result.Changes from the existing JSON report.
// A missing file is the first run; an unreadable one is logged and ignored.
func (e *Emitter) compareWithPrevious(path string, result *model.WatchResult) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			e.logger.Warn("failed to open previous report", "path", path, "error", err)
		}
		return
	}
	defer f.Close()

	previous, err := ReadItems(f)
	if err != nil {
		e.logger.Warn("ignoring unreadable previous report", "path", path, "error", err)
		return
	}
	result.Changes = model.CompareItems(previous, result.Filtered)
}

// WriteIndex writes the index page linking the HTML reports of results.
// It returns the path of the page.
func (e *Emitter) WriteIndex(results []*model.WatchResult) (string, error) {
	entries := make([]IndexEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, IndexEntry{
			Label:   r.Label,
			Href:    filepath.Base(NewPaths(e.dir, r.Label).HTML),
			Matches: r.MatchCount(),
		})
	}

	if err := os.MkdirAll(e.dir, dirPerm); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.dir, IndexFileName)
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return path, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := NewIndexWriter(f).Write(entries); err != nil {
		return path, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Constructors for the per-watch report files.
var (
	newJSONFileWriter     = func(w io.Writer) Writer { return NewJSONWriter(w) }
	newHTMLFileWriter     = func(w io.Writer) Writer { return NewHTMLWriter(w) }
	newMarkdownFileWriter = func(w io.Writer) Writer { return NewMarkdownWriter(w) }
)

// writeFile creates or truncates path and writes result with the writer
// returned by newWriter.
func writeFile(path string, newWriter func(io.Writer) Writer, result *model.WatchResult) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if _, err := newWriter(f).Write(result); err != nil {
		_ = f.Close() //nolint:errcheck // the write error is more useful
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

// joinPaths formats "a", "a and b" or "a, b and c".
func joinPaths(paths []string) string {
	switch len(paths) {
	case 0:
		return ""
	case 1:
		return paths[0]
	}
	out := paths[0]
	for _, p := range paths[1 : len(paths)-1] {
		out += ", " + p
	}
	return out + " and " + paths[len(paths)-1]
}
