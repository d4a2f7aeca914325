package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/nao1215/pricewatch/internal/model"
	"github.com/nao1215/pricewatch/internal/report"
)

// TestNewRunCmd tests the run command creation.
func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()

	if cmd.Use != "run" {
		t.Errorf("expected use 'run', got %q", cmd.Use)
	}

	flags := []struct {
		name      string
		shorthand string
	}{
		{"config", "c"},
		{"timeout", "t"},
		{"proxy", "x"},
		{"header", "H"},
		{"max-pages", "p"},
		{"workers", "w"},
		{"interval", "i"},
		{"output-dir", "o"},
		{"markdown", "m"},
		{"json-only", "j"},
		{"base-url", ""},
		{"user-agent", ""},
		{"only", ""},
		{"log-format", ""},
	}
	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
		})
	}
}

// TestApplyFlags tests that only explicitly set flags override the config.
func TestApplyFlags(t *testing.T) {
	t.Parallel()

	t.Run("set flags override", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{
			"-w", "4",
			"-H", "Cookie: session=abc",
			"--only", "MacBook results",
			"-m",
			"--interval", "30m",
			"--log-format", "json",
		}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg := config.NewConfig()
		cfg.Headers = map[string]string{"Accept-Language": "lv"}
		if err := applyFlags(cmd, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Workers != 4 {
			t.Errorf("expected workers 4, got %d", cfg.Workers)
		}
		if cfg.Interval != 30*time.Minute {
			t.Errorf("expected interval 30m, got %s", cfg.Interval)
		}
		if !cfg.Markdown {
			t.Error("expected markdown enabled")
		}
		if cfg.LogFormat != config.LogFormatJSON {
			t.Errorf("expected log format json, got %q", cfg.LogFormat)
		}
		if diff := cmp.Diff([]string{"MacBook results"}, cfg.Only); diff != "" {
			t.Errorf("only mismatch (-want +got):\n%s", diff)
		}
		wantHeaders := map[string]string{"Accept-Language": "lv", "Cookie": "session=abc"}
		if diff := cmp.Diff(wantHeaders, cfg.Headers); diff != "" {
			t.Errorf("headers mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unset flags keep file values", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{"-w", "2"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}

		cfg := config.NewConfig()
		cfg.MaxPages = 7
		cfg.OutputDir = "from-file"
		cfg.Timeout = 5 * time.Second
		if err := applyFlags(cmd, cfg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 7 {
			t.Errorf("expected max pages 7, got %d", cfg.MaxPages)
		}
		if cfg.OutputDir != "from-file" {
			t.Errorf("expected output dir 'from-file', got %q", cfg.OutputDir)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("expected timeout 5s, got %s", cfg.Timeout)
		}
	})

	t.Run("invalid header", func(t *testing.T) {
		t.Parallel()

		cmd := NewRunCmd()
		if err := cmd.ParseFlags([]string{"-H", "no-colon"}); err != nil {
			t.Fatalf("failed to parse flags: %v", err)
		}
		if err := applyFlags(cmd, config.NewConfig()); err == nil {
			t.Error("expected error for malformed header")
		}
	})
}

// TestParseHeaders tests "Name: value" parsing.
func TestParseHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     []string
		want    map[string]string
		wantErr bool
	}{
		{
			name: "trims name and value",
			raw:  []string{"  X-Api-Key :  secret  "},
			want: map[string]string{"X-Api-Key": "secret"},
		},
		{
			name: "value may contain colons",
			raw:  []string{"Referer: https://example.com/a"},
			want: map[string]string{"Referer": "https://example.com/a"},
		},
		{
			name: "empty value",
			raw:  []string{"X-Empty:"},
			want: map[string]string{"X-Empty": ""},
		},
		{
			name:    "missing colon",
			raw:     []string{"Cookie"},
			wantErr: true,
		},
		{
			name:    "missing name",
			raw:     []string{": value"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseHeaders(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("headers mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// listingServer serves one page of listings for any query and counts requests.
func listingServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/meklet" || r.URL.Query().Get("page") == "" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"data": [
				{"title": "MacBook Air 13", "price": "649.00", "actual_price": "549.00", "article": 100,
				 "url": "https://shop.example/p/100", "branche": {"city": "Rīga", "final_title": "Rīga, Centrs"}},
				{"title": "MacBook Pro 16", "price": "1200.00", "article": 101,
				 "url": "https://shop.example/p/101", "branche": {"city": "Rīga", "final_title": "Rīga, Centrs"}},
				{"title": "MacBook Air 11", "price": "300.00", "article": 102,
				 "url": "https://shop.example/p/102", "branche": {"city": "Liepāja", "final_title": "Liepāja"}}
			],
			"to": 3, "total": 3, "last_page": 1
		}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// writeRunConfig writes a config file with a single MacBook watch.
func writeRunConfig(t *testing.T, dir, outputDir string) string {
	t.Helper()

	content := fmt.Sprintf(`output_dir: %q
watches:
  - label: MacBook results
    query_path: "meklet?q=macbook"
    max_price: 600
    include_terms: [MacBook]
    city: rīga
`, outputDir)

	path := filepath.Join(dir, config.DefaultConfigFile)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// TestRunCommand runs the whole command against a local listing API.
func TestRunCommand(t *testing.T) {
	var requests atomic.Int32
	srv := listingServer(t, &requests)

	dir := t.TempDir()
	outputDir := filepath.Join(dir, "results")
	configPath := writeRunConfig(t, dir, outputDir)

	run := func(args ...string) (string, error) {
		var stdout, stderr bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&stdout)
		root.SetErr(&stderr)
		root.SetArgs(append([]string{"run", "-c", configPath, "--base-url", srv.URL + "/"}, args...))
		err := root.Execute()
		return stdout.String(), err
	}

	t.Run("writes reports for matching items", func(t *testing.T) {
		out, err := run()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(out, "Results for 'MacBook results' saved to") {
			t.Errorf("expected saved line, got %q", out)
		}
		if requests.Load() != 1 {
			t.Errorf("expected 1 request, got %d", requests.Load())
		}

		paths := report.NewPaths(outputDir, "MacBook results")
		f, err := os.Open(paths.JSON)
		if err != nil {
			t.Fatalf("expected JSON report: %v", err)
		}
		defer f.Close()

		items, err := report.ReadItems(f)
		if err != nil {
			t.Fatalf("failed to read report: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 matching item, got %d", len(items))
		}
		if items[0].Title.String() != "MacBook Air 13" {
			t.Errorf("expected 'MacBook Air 13', got %q", items[0].Title.String())
		}

		for _, p := range []string{paths.HTML, filepath.Join(outputDir, report.IndexFileName)} {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("expected %s to exist: %v", p, err)
			}
		}
		if _, err := os.Stat(paths.Markdown); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected no Markdown report, got %v", err)
		}
	})

	t.Run("second run reports no changes", func(t *testing.T) {
		out, err := run("-m")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(out, "Changes for") {
			t.Errorf("expected no changes section, got %q", out)
		}
		if _, err := os.Stat(report.NewPaths(outputDir, "MacBook results").Markdown); err != nil {
			t.Errorf("expected Markdown report: %v", err)
		}
	})

	t.Run("unknown only label is a configuration error", func(t *testing.T) {
		_, err := run("--only", "nope")
		if !errors.Is(err, config.ErrUnknownWatch) {
			t.Errorf("expected ErrUnknownWatch, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		_, err := run("-m", "-j")
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

// TestRunWatchesInterrupted tests that a pass cancelled mid-walk leaves
// the previous reports and index in place.
func TestRunWatchesInterrupted(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") != "1" {
			cancel()
			<-r.Context().Done()
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data": [{"title": "MacBook Air 13", "price": "500.00"}], "to": 1, "total": 2}`)
	}))
	t.Cleanup(srv.Close)

	outputDir := t.TempDir()
	paths := report.NewPaths(outputDir, "MacBook results")
	indexPath := filepath.Join(outputDir, report.IndexFileName)
	previous := `[{"title": "MacBook Pro 14"}, {"title": "MacBook Air 15"}]`
	if err := os.WriteFile(paths.JSON, []byte(previous), 0600); err != nil {
		t.Fatalf("failed to seed report: %v", err)
	}
	if err := os.WriteFile(indexPath, []byte("previous index"), 0600); err != nil {
		t.Fatalf("failed to seed index: %v", err)
	}

	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL + "/"
	cfg.OutputDir = outputDir
	cfg.Workers = 1
	cfg.Watches = []model.Watch{{
		Label:        "MacBook results",
		QueryPath:    "meklet?q=macbook",
		IncludeTerms: []string{"macbook"},
	}}

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	err := runWatches(ctx, cfg, &out, logger)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	f, err := os.Open(paths.JSON)
	if err != nil {
		t.Fatalf("expected JSON report: %v", err)
	}
	defer f.Close()
	items, err := report.ReadItems(f)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if len(items) != 2 {
		t.Errorf("expected previous 2 items kept, got %d", len(items))
	}

	index, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("failed to read index: %v", err)
	}
	if string(index) != "previous index" {
		t.Errorf("expected index left untouched, got %q", index)
	}
	if !strings.Contains(out.String(), "not saved") {
		t.Errorf("expected skip line, got %q", out.String())
	}
}

// TestRunWatchesWithoutIncludeTerms tests that a watch without include
// terms is reported and still run.
func TestRunWatchesWithoutIncludeTerms(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32
	srv := listingServer(t, &requests)

	outputDir := t.TempDir()
	cfg := config.NewConfig()
	cfg.BaseURL = srv.URL + "/"
	cfg.OutputDir = outputDir
	cfg.JSONOnly = true
	cfg.Watches = []model.Watch{
		{Label: "Lamps", QueryPath: "meklet?q=lamp", IncludeTerms: []string{}},
		{Label: "MacBook results", QueryPath: "meklet?q=macbook", IncludeTerms: []string{"macbook"}},
	}

	var out, logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	if err := runWatches(context.Background(), cfg, &out, logger); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := strings.Count(logs.String(), "no include terms"); got != 1 {
		t.Errorf("expected 1 include terms warning, got %d", got)
	}
	if !strings.Contains(logs.String(), "will match nothing\" watch=Lamps") {
		t.Errorf("expected warning for Lamps, got %q", logs.String())
	}

	for _, label := range []string{"Lamps", "MacBook results"} {
		if _, err := os.Stat(report.NewPaths(outputDir, label).JSON); err != nil {
			t.Errorf("expected report for %s: %v", label, err)
		}
	}
}

// TestRunCommandMissingConfig tests the error for an explicit missing file.
func TestRunCommandMissingConfig(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "-c", filepath.Join(t.TempDir(), "missing.yaml")})

	err := root.Execute()
	if !errors.Is(err, config.ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}
