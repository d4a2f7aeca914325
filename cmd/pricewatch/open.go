package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/nao1215/pricewatch/internal/report"
)

// openBrowser opens target with the platform's default handler.
// Tests replace it to avoid launching a browser.
var openBrowser = func(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}

// NewOpenCmd creates the open command.
func NewOpenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open [label]",
		Short: "Open a watch's HTML report in the browser",
		Long: `Open shows the HTML report of the watch with the given label in the
default browser. Without a label the index page listing every watch is
opened.

Examples:
  # Open the report of one watch
  pricewatch open "MacBook results"

  # Open the index page
  pricewatch open`,
		Args: cobra.MaximumNArgs(1),
		RunE: runOpenCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pricewatch.yaml, config.json or XDG config)")
	cmd.Flags().StringP("output-dir", "o", "",
		"Directory holding the reports (default: from configuration)")

	return cmd
}

// runOpenCmd executes the open command.
func runOpenCmd(cmd *cobra.Command, args []string) error {
	dir, err := cmd.Flags().GetString("output-dir")
	if err != nil {
		return err
	}

	var cfg *config.Config
	if dir == "" || len(args) > 0 {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			return err
		}
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if dir == "" {
			dir = cfg.OutputDir
		}
	}

	target := filepath.Join(dir, report.IndexFileName)
	if len(args) > 0 {
		w, ok := cfg.FindWatch(args[0])
		if !ok {
			return fmt.Errorf("%w: %s", config.ErrUnknownWatch, args[0])
		}
		target = report.NewPaths(dir, w.Label).HTML
	}

	if _, err := os.Stat(target); err != nil {
		return fmt.Errorf("report not found: %s (run 'pricewatch run' first)", target)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	if err := openBrowser(abs); err != nil {
		return fmt.Errorf("failed to open %s: %w", abs, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Opened %s\n", abs)
	return nil
}
