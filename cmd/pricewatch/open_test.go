package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/nao1215/pricewatch/internal/report"
)

// stubBrowser replaces openBrowser for the duration of the test and
// returns a pointer to the last opened target.
func stubBrowser(t *testing.T) *string {
	t.Helper()

	var opened string
	orig := openBrowser
	openBrowser = func(target string) error {
		opened = target
		return nil
	}
	t.Cleanup(func() { openBrowser = orig })
	return &opened
}

// TestOpenCommand tests opening reports.
// Subtests share the openBrowser stub and therefore run sequentially.
func TestOpenCommand(t *testing.T) {
	dir := t.TempDir()
	outputDir := filepath.Join(dir, "results")
	configPath := writeRunConfig(t, dir, outputDir)

	paths := report.NewPaths(outputDir, "MacBook results")
	if err := os.MkdirAll(outputDir, 0750); err != nil {
		t.Fatalf("failed to create output dir: %v", err)
	}
	for _, p := range []string{paths.HTML, filepath.Join(outputDir, report.IndexFileName)} {
		if err := os.WriteFile(p, []byte("<html></html>"), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", p, err)
		}
	}

	open := func(args ...string) (string, error) {
		var stdout bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&stdout)
		root.SetErr(&bytes.Buffer{})
		root.SetArgs(append([]string{"open"}, args...))
		err := root.Execute()
		return stdout.String(), err
	}

	t.Run("opens the report of a watch", func(t *testing.T) {
		opened := stubBrowser(t)

		out, err := open("-c", configPath, "MacBook results")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(*opened) != "mac_book_results.html" {
			t.Errorf("expected mac_book_results.html, got %q", *opened)
		}
		if !filepath.IsAbs(*opened) {
			t.Errorf("expected absolute path, got %q", *opened)
		}
		if !strings.Contains(out, "Opened") {
			t.Errorf("expected confirmation, got %q", out)
		}
	})

	t.Run("opens the index without a label", func(t *testing.T) {
		opened := stubBrowser(t)

		if _, err := open("-o", outputDir); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if filepath.Base(*opened) != report.IndexFileName {
			t.Errorf("expected %s, got %q", report.IndexFileName, *opened)
		}
	})

	t.Run("unknown label", func(t *testing.T) {
		stubBrowser(t)

		_, err := open("-c", configPath, "Lamps")
		if !errors.Is(err, config.ErrUnknownWatch) {
			t.Errorf("expected ErrUnknownWatch, got %v", err)
		}
	})

	t.Run("missing report", func(t *testing.T) {
		opened := stubBrowser(t)

		_, err := open("-o", filepath.Join(dir, "empty"))
		if err == nil || !strings.Contains(err.Error(), "report not found") {
			t.Errorf("expected 'report not found' error, got %v", err)
		}
		if *opened != "" {
			t.Errorf("expected browser not to be opened, got %q", *opened)
		}
	})

	t.Run("browser failure is reported", func(t *testing.T) {
		orig := openBrowser
		openBrowser = func(string) error { return errors.New("no display") }
		t.Cleanup(func() { openBrowser = orig })

		_, err := open("-o", outputDir)
		if err == nil || !strings.Contains(err.Error(), "no display") {
			t.Errorf("expected browser error, got %v", err)
		}
	})
}
