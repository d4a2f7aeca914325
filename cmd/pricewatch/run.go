package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/pricewatch/internal/config"
	"github.com/nao1215/pricewatch/internal/fetcher"
	seclog "github.com/nao1215/pricewatch/internal/log"
	"github.com/nao1215/pricewatch/internal/model"
	"github.com/nao1215/pricewatch/internal/pipeline"
	"github.com/nao1215/pricewatch/internal/report"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check every configured watch and write the reports",
		Long: `Run fetches all result pages of each watch's query, keeps the listings
that match the watch and writes the reports to the output directory.

Settings are taken from the configuration file, then PRICEWATCH_*
environment variables (a .env file in the current directory is loaded
first), then the flags below.

Examples:
  # Check all watches once
  pricewatch run

  # Check two watches only, also writing Markdown
  pricewatch run --only "MacBook results" --only "iPhone results" -m

  # Keep checking every 30 minutes until interrupted
  pricewatch run --interval 30m

  # Use another configuration file and four concurrent watches
  pricewatch run -c ~/watches.yaml -w 4`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pricewatch.yaml, config.json or XDG config)")

	// Request flags
	cmd.Flags().String("base-url", config.DefaultBaseURL,
		"Root URL of the listing API")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each page request")
	cmd.Flags().StringP("proxy", "x", "",
		"Proxy URL (http, https, socks5 or socks5h)")
	cmd.Flags().StringArrayP("header", "H", nil,
		`Extra request header as "Name: value" (repeatable)`)
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages fetched per watch (0 = no limit)")

	// Run behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of watches processed concurrently")
	cmd.Flags().DurationP("interval", "i", 0,
		"Re-run all watches at this interval until interrupted")
	cmd.Flags().StringSlice("only", nil,
		"Run only the watches with these labels (repeatable)")

	// Report flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory receiving the reports")
	cmd.Flags().BoolP("markdown", "m", false,
		"Also write a Markdown report (mutually exclusive with --json-only)")
	cmd.Flags().BoolP("json-only", "j", false,
		"Write only the JSON report (mutually exclusive with --markdown)")
	cmd.Flags().String("log-format", config.LogFormatText,
		"Log format: text or json")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runWatches(ctx, cfg, cmd.OutOrStdout(), logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig loads .env, the configuration file and the environment,
// then applies the flags the user set explicitly.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) && configPath == "" {
			return nil, fmt.Errorf("%w (create one with 'pricewatch init')", err)
		}
		return nil, err
	}

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags overrides cfg with every flag that was set on the command
// line. Flags left at their default do not override the file or the
// environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("base-url") {
		if cfg.BaseURL, err = flags.GetString("base-url"); err != nil {
			return err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("header") {
		raw, err := flags.GetStringArray("header")
		if err != nil {
			return err
		}
		headers, err := parseHeaders(raw)
		if err != nil {
			return err
		}
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(headers))
		}
		for k, v := range headers {
			cfg.Headers[k] = v
		}
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return err
		}
	}
	if flags.Changed("workers") {
		if cfg.Workers, err = flags.GetInt("workers"); err != nil {
			return err
		}
	}
	if flags.Changed("interval") {
		if cfg.Interval, err = flags.GetDuration("interval"); err != nil {
			return err
		}
	}
	if flags.Changed("only") {
		if cfg.Only, err = flags.GetStringSlice("only"); err != nil {
			return err
		}
	}
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return err
		}
	}
	if flags.Changed("markdown") {
		if cfg.Markdown, err = flags.GetBool("markdown"); err != nil {
			return err
		}
	}
	if flags.Changed("json-only") {
		if cfg.JSONOnly, err = flags.GetBool("json-only"); err != nil {
			return err
		}
	}
	if flags.Changed("log-format") {
		if cfg.LogFormat, err = flags.GetString("log-format"); err != nil {
			return err
		}
	}
	if getVerboseFlag(cmd) {
		cfg.Verbose = true
	}
	return nil
}

// parseHeaders turns "Name: value" strings into a header map.
func parseHeaders(raw []string) (map[string]string, error) {
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (expected \"Name: value\")", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

// setupLogger creates the secure structured logger selected by cfg.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	if cfg.LogFormat == config.LogFormatJSON {
		return seclog.NewSecureJSONLogger(w, cfg.Verbose)
	}
	return seclog.NewSecureLogger(w, cfg.Verbose)
}

// runWatches runs every selected watch once, or repeatedly when an
// interval is configured. In periodic mode an interrupt ends the loop
// without an error.
func runWatches(ctx context.Context, cfg *config.Config, out io.Writer, logger *slog.Logger) error {
	client, err := fetcher.NewClient(cfg.BaseURL,
		fetcher.WithUserAgent(cfg.UserAgent),
		fetcher.WithTimeout(cfg.Timeout),
		fetcher.WithProxy(cfg.Proxy),
		fetcher.WithHeaders(cfg.Headers),
		fetcher.WithLogger(logger),
	)
	if err != nil {
		return fmt.Errorf("failed to create HTTP client: %w", err)
	}

	factory := func(model.Watch) *pipeline.Pipeline {
		return pipeline.DefaultPipeline(client,
			[]pipeline.Option{
				pipeline.WithLogger(logger),
				pipeline.WithContinueOnError(true),
			},
			pipeline.WithMaxPages(cfg.MaxPages),
		)
	}
	runner := pipeline.NewRunner(factory,
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithRunnerLogger(logger),
	)
	emitter := report.NewEmitter(cfg.OutputDir,
		report.WithHTML(!cfg.JSONOnly),
		report.WithMarkdown(cfg.Markdown),
		report.WithConsole(out),
		report.WithEmitterLogger(logger),
	)

	logger.Info("starting pricewatch",
		"config", cfg.ConfigFilePath,
		"watches", len(cfg.SelectedWatches()),
		"workers", cfg.Workers,
		"interval", cfg.Interval,
	)

	for _, w := range cfg.SelectedWatches() {
		if !w.HasIncludeTerms() {
			logger.Warn("watch has no include terms and will match nothing", "watch", w.Label)
		}
	}

	if cfg.Interval <= 0 {
		return runOnce(ctx, cfg, runner, emitter, out, logger)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for {
		if err := runOnce(ctx, cfg, runner, emitter, out, logger); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// A pass with unwritable reports is retried on the next tick.
			logger.Error("run failed", "error", err)
		}
		fmt.Fprintf(out, "Next check at %s\n", time.Now().Add(cfg.Interval).Format(time.TimeOnly))

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runOnce processes the selected watches a single time, writes their
// reports, the index page and the terminal summary.
func runOnce(ctx context.Context, cfg *config.Config, runner *pipeline.Runner,
	emitter *report.Emitter, out io.Writer, logger *slog.Logger) error {
	var emitErrs []error
	results, runErr := runner.Run(ctx, cfg.SelectedWatches(), func(result *model.WatchResult) {
		if _, err := emitter.Emit(result); err != nil {
			logger.Error("failed to write reports", "watch", result.Label, "error", err)
			emitErrs = append(emitErrs, fmt.Errorf("%s: %w", result.Label, err))
		}
	})

	if len(results) > 0 {
		// An interrupted pass keeps the index of the last complete one.
		if !cfg.JSONOnly && runErr == nil {
			if _, err := emitter.WriteIndex(results); err != nil {
				logger.Error("failed to write index page", "error", err)
				emitErrs = append(emitErrs, err)
			}
		}
		if _, err := report.NewSummaryWriter(out, report.WithChanges(true)).WriteAll(results); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("run cancelled: %w", runErr)
	}
	if len(emitErrs) > 0 {
		return fmt.Errorf("failed to write reports: %w", errors.Join(emitErrs...))
	}
	return nil
}
