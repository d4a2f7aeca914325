package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is the configuration file looked up in the
	// current directory.
	DefaultConfigFile = ".pricewatch.yaml"

	// LegacyConfigFile is the array-form file of earlier versions.
	LegacyConfigFile = "config.json"

	// xdgConfigFile is the file name inside the XDG config directory.
	xdgConfigFile = "config.yaml"
)

// File represents the structure of a configuration file.
// Durations are strings such as "30s" or "1h30m".
type File struct {
	BaseURL   string            `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	UserAgent string            `yaml:"user_agent,omitempty" json:"user_agent,omitempty"`
	Timeout   string            `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Interval  string            `yaml:"interval,omitempty" json:"interval,omitempty"`
	Proxy     string            `yaml:"proxy,omitempty" json:"proxy,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
	OutputDir string            `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
	Workers   int               `yaml:"workers,omitempty" json:"workers,omitempty"`
	MaxPages  *int              `yaml:"max_pages,omitempty" json:"max_pages,omitempty"`

	// Defaults are applied to every watch, see BuildWatches.
	Defaults WatchEntry `yaml:"defaults,omitempty" json:"defaults,omitempty"`

	// Watches are the configured queries, in run order.
	Watches []WatchEntry `yaml:"watches,omitempty" json:"watches,omitempty"`
}

// LoadConfigFile reads a configuration file.
//
// Files ending in .json or .json5 are parsed as JSON5, anything else as
// YAML. The top level may be a mapping (the File layout) or, as in the
// legacy config.json, a bare list of watches. A sibling file with
// ".local" before the extension (".pricewatch.local.yaml") is merged on
// top when present, for machine-specific settings kept out of version
// control.
//
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	f, err := readFile(path)
	if err != nil {
		return nil, err
	}

	local, err := readFile(localVariant(path))
	switch {
	case errors.Is(err, ErrConfigNotFound):
		return f, nil
	case err != nil:
		return nil, err
	}

	if err := mergo.Merge(f, *local, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return nil, fmt.Errorf("%w: failed to merge %s: %w", ErrInvalidConfigFile, localVariant(path), err)
	}
	return f, nil
}

// readFile reads and decodes a single configuration file.
func readFile(path string) (*File, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	f, err := parse(data, isJSON(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfigFile, path, err)
	}
	return f, nil
}

// parse decodes a configuration document in either layout.
func parse(data []byte, asJSON bool) (*File, error) {
	decode := yaml.Unmarshal
	if asJSON {
		decode = json5.Unmarshal
	}

	var probe any
	if err := decode(data, &probe); err != nil {
		return nil, err
	}

	var f File
	switch probe.(type) {
	case nil:
	case []any:
		if err := decode(data, &f.Watches); err != nil {
			return nil, err
		}
	case map[string]any:
		if err := decode(data, &f); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("top level must be a mapping or a list of watches")
	}
	return &f, nil
}

// isJSON reports whether path names a JSON or JSON5 document.
func isJSON(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".json5":
		return true
	default:
		return false
	}
}

// localVariant returns the override file for path:
// "dir/.pricewatch.yaml" becomes "dir/.pricewatch.local.yaml".
func localVariant(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// ApplyFile copies the settings present in f onto c and replaces c's
// watches with the ones f defines.
func (c *Config) ApplyFile(f *File) error {
	if f.BaseURL != "" {
		c.BaseURL = f.BaseURL
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.Proxy != "" {
		c.Proxy = f.Proxy
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Workers != 0 {
		c.Workers = f.Workers
	}
	if f.MaxPages != nil {
		c.MaxPages = *f.MaxPages
	}
	if len(f.Headers) > 0 {
		if c.Headers == nil {
			c.Headers = make(map[string]string, len(f.Headers))
		}
		for k, v := range f.Headers {
			c.Headers[k] = v
		}
	}
	if err := parseDuration("timeout", f.Timeout, &c.Timeout); err != nil {
		return err
	}
	if err := parseDuration("interval", f.Interval, &c.Interval); err != nil {
		return err
	}

	watches, err := BuildWatches(f)
	if err != nil {
		return err
	}
	c.Watches = watches
	return nil
}

// parseDuration sets *dst from s unless s is empty.
func parseDuration(name, s string, dst *time.Duration) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%w: %s %q", ErrInvalidDuration, name, s)
	}
	*dst = d
	return nil
}

// FindConfigFile searches for the configuration file in the following order:
//  1. If configPath is specified, use it directly
//  2. .pricewatch.yaml in the current directory
//  3. config.json (legacy layout) in the current directory
//  4. config.yaml in the XDG config directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	}
	return findConfigFile(configPath, cwd, XDGConfigDir())
}

func findConfigFile(configPath, cwd, xdgDir string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd != "" {
		candidates = append(candidates,
			filepath.Join(cwd, DefaultConfigFile),
			filepath.Join(cwd, LegacyConfigFile),
		)
	}
	candidates = append(candidates, filepath.Join(xdgDir, xdgConfigFile))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// Load builds the configuration for a run: defaults, then the config
// file found by FindConfigFile, then PRICEWATCH_* environment
// variables. Command-line flags are applied by the caller afterwards.
func Load(configPath string) (*Config, error) {
	cfg := NewConfig()

	if configPath == "" {
		configPath = os.Getenv(EnvPrefix + "CONFIG")
	}
	path := FindConfigFile(configPath)
	if path == "" {
		if configPath != "" {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, ErrConfigNotFound
	}

	f, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyFile(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ConfigFilePath = path

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}
