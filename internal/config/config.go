package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/pricewatch/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "pricewatch"

	// DefaultBaseURL is the root of the listing API. Watch query paths
	// are resolved relative to it.
	DefaultBaseURL = "https://veikals.banknote.lv/lv/"

	// DefaultUserAgent identifies the watcher in HTTP requests.
	DefaultUserAgent = "Mozilla/5.0 (compatible; BanknotePriceChecker/1.0)"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 30 * time.Second

	// DefaultOutputDir is where reports are written, relative to the
	// working directory.
	DefaultOutputDir = "results"

	// DefaultWorkers runs watches one at a time, in configured order.
	DefaultWorkers = 1

	// DefaultMaxPages stops a query that keeps reporting more items
	// after this many pages. Zero disables the ceiling.
	DefaultMaxPages = 100

	// LogFormatText and LogFormatJSON select the log handler.
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds all configuration options for pricewatch.
// It is built from defaults, then the config file, then PRICEWATCH_*
// environment variables, then command-line flags, and passed down
// explicitly rather than kept in global state.
//
// Design decision: A single flat struct, as the number of global options
// is small. Per-query settings live in Watches.
type Config struct {
	// BaseURL is the listing API root; must be an absolute http(s) URL.
	BaseURL string

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// Proxy is an optional proxy URL (http, https, socks5 or socks5h).
	Proxy string

	// Headers are extra request headers, e.g. a session cookie.
	Headers map[string]string

	// OutputDir is the directory receiving the report files.
	OutputDir string

	// Workers is the number of watches processed concurrently.
	Workers int

	// Interval re-runs all watches periodically when positive.
	// Zero runs them once.
	Interval time.Duration

	// MaxPages bounds the pages fetched per watch. Zero means no bound.
	MaxPages int

	// Verbose enables debug logging.
	Verbose bool

	// LogFormat is "text" (default) or "json".
	LogFormat string

	// Markdown additionally writes a Markdown report per watch.
	Markdown bool

	// JSONOnly skips the HTML report.
	JSONOnly bool

	// Only restricts a run to the watches with these labels.
	Only []string

	// ConfigFilePath is the config file that was loaded, if any.
	ConfigFilePath string

	// Watches are the configured queries, in file order.
	Watches []model.Watch
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BaseURL:   DefaultBaseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		OutputDir: DefaultOutputDir,
		Workers:   DefaultWorkers,
		MaxPages:  DefaultMaxPages,
		LogFormat: LogFormatText,
	}
}

// XDGConfigDir returns the XDG config directory for pricewatch.
// On Linux: ~/.config/pricewatch
// On macOS: ~/Library/Application Support/pricewatch
// On Windows: %APPDATA%\pricewatch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the package's sentinel errors.
//
// Design decision: Validation happens once after flags are parsed so the
// pipeline can assume well-formed watches and never has to report
// configuration mistakes mid-run.
func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.Interval < 0 {
		return ErrInvalidInterval
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.JSONOnly && c.Markdown {
		return ErrConflictingReportFormats
	}

	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return ErrInvalidLogFormat
	}

	if c.OutputDir == "" {
		return ErrMissingOutputDir
	}

	if len(c.Watches) == 0 {
		return ErrNoWatches
	}

	seen := make(map[string]bool, len(c.Watches))
	files := make(map[string]string, len(c.Watches))
	for _, w := range c.Watches {
		if seen[w.Label] {
			return ErrDuplicateLabel
		}
		seen[w.Label] = true

		// Reports are named after the label, so two labels must not
		// reduce to the same file name.
		base := w.BaseName()
		if other, ok := files[base]; ok {
			return fmt.Errorf("%w: %q and %q both write %s_results.*", ErrReportNameCollision, other, w.Label, base)
		}
		files[base] = w.Label
	}

	for _, label := range c.Only {
		if !seen[label] {
			return ErrUnknownWatch
		}
	}

	return nil
}

// SelectedWatches returns the watches to run: all of them, or those
// named by Only, keeping configured order either way.
func (c *Config) SelectedWatches() []model.Watch {
	if len(c.Only) == 0 {
		return c.Watches
	}
	selected := make([]model.Watch, 0, len(c.Only))
	for _, w := range c.Watches {
		if slices.Contains(c.Only, w.Label) {
			selected = append(selected, w)
		}
	}
	return selected
}

// FindWatch returns the watch with the given label.
func (c *Config) FindWatch(label string) (model.Watch, bool) {
	for _, w := range c.Watches {
		if w.Label == label {
			return w, true
		}
	}
	return model.Watch{}, false
}
