package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/pricewatch/internal/model"
)

// TestMarkdownWriter tests the Markdown report.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	render := func(t *testing.T, result *model.WatchResult) string {
		t.Helper()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(result); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return buf.String()
	}

	t.Run("header and listings", func(t *testing.T) {
		t.Parallel()

		out := render(t, createTestResult(t))

		expected := []string{
			"# MacBook results",
			"`meklet?q=macbook`",
			"## Listings",
			"MacBook Air 13",
			"[link](",
			"complete",
		}
		for _, s := range expected {
			if !strings.Contains(out, s) {
				t.Errorf("expected output to contain %q", s)
			}
		}
	})

	t.Run("non-http URLs are not linked", func(t *testing.T) {
		t.Parallel()

		result := createTestResult(t)
		result.Filtered = []model.Item{
			mustDecodeItem(t, `{"title": "Trap", "url": "javascript:alert(1)"}`),
		}
		out := render(t, result)

		if strings.Contains(out, "[link](") {
			t.Errorf("expected no link for javascript: URL, got %q", out)
		}
		if !strings.Contains(out, "javascript:alert(1)") {
			t.Errorf("expected URL shown as text, got %q", out)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		t.Parallel()

		out := render(t, model.NewWatchResult(model.Watch{Label: "Nothing"}))
		if !strings.Contains(out, "No matching listings.") {
			t.Error("expected empty listing notice")
		}
		if !strings.Contains(out, "No listings matched the filters.") {
			t.Error("expected note callout")
		}
	})

	t.Run("changes are reported", func(t *testing.T) {
		t.Parallel()

		result := createTestResult(t)
		gone := mustDecodeItem(t, `{"title": "Old Lamp", "price": "5", "url": "https://shop/old"}`)
		result.Changes = model.CompareItems(append([]model.Item{gone}, result.Filtered[1:]...), result.Filtered)

		out := render(t, result)
		if !strings.Contains(out, "1 new and 1 removed listing(s)") {
			t.Error("expected change callout")
		}
		if !strings.Contains(out, "## No Longer Listed") {
			t.Error("expected removed section")
		}
		if !strings.Contains(out, "Old Lamp | 5 | https://shop/old") {
			t.Error("expected removed item description")
		}
	})

	t.Run("failed run", func(t *testing.T) {
		t.Parallel()

		result := model.NewWatchResult(model.Watch{Label: "Broken"})
		result.Error = errors.New("all pages failed")
		result.ErrorMessage = result.Error.Error()

		out := render(t, result)
		if !strings.Contains(out, "could not be fetched completely: all pages failed") {
			t.Error("expected warning callout")
		}
		if !strings.Contains(out, "error: all pages failed") {
			t.Error("expected error status")
		}
	})
}

// TestStatusText tests run status descriptions.
func TestStatusText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *model.WatchResult
		want   string
	}{
		{"complete", &model.WatchResult{}, "complete"},
		{"failed pages", &model.WatchResult{FailedPages: 2}, "2 page(s) failed"},
		{"error", &model.WatchResult{Error: errors.New("x"), ErrorMessage: "x"}, "error: x"},
		{"cancelled wins", &model.WatchResult{TimedOut: true, Error: errors.New("x")}, "cancelled (partial results)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := statusText(tt.result); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestEscapeCell tests table cell sanitizing.
func TestEscapeCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a | b", `a \| b`},
		{"two\nlines", "two lines"},
		{"  spaced   out ", "spaced out"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := escapeCell(tt.in); got != tt.want {
				t.Errorf("escapeCell(%q): expected %q, got %q", tt.in, tt.want, got)
			}
		})
	}
}
