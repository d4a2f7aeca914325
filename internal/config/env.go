package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPrefix is the prefix of every environment variable read by pricewatch.
const EnvPrefix = "PRICEWATCH_"

// LoadDotEnv loads variables from the given .env files (".env" when none
// are given) into the process environment. Variables that are already
// set are not overridden, and missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides c with the PRICEWATCH_* variables that are set:
//
//	PRICEWATCH_BASE_URL, PRICEWATCH_USER_AGENT, PRICEWATCH_PROXY,
//	PRICEWATCH_OUTPUT_DIR, PRICEWATCH_TIMEOUT, PRICEWATCH_INTERVAL,
//	PRICEWATCH_WORKERS, PRICEWATCH_MAX_PAGES, PRICEWATCH_VERBOSE,
//	PRICEWATCH_LOG_FORMAT
func (c *Config) ApplyEnv() error {
	return c.applyEnv(os.LookupEnv)
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"BASE_URL", &c.BaseURL},
		{"USER_AGENT", &c.UserAgent},
		{"PROXY", &c.Proxy},
		{"OUTPUT_DIR", &c.OutputDir},
		{"LOG_FORMAT", &c.LogFormat},
	}
	for _, s := range strs {
		if v, ok := get(s.name); ok {
			*s.dst = v
		}
	}

	if v, ok := get("TIMEOUT"); ok {
		if err := parseDuration(EnvPrefix+"TIMEOUT", v, &c.Timeout); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEnv, err)
		}
	}
	if v, ok := get("INTERVAL"); ok {
		if err := parseDuration(EnvPrefix+"INTERVAL", v, &c.Interval); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidEnv, err)
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"WORKERS", &c.Workers},
		{"MAX_PAGES", &c.MaxPages},
	}
	for _, i := range ints {
		if v, ok := get(i.name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s%s=%q is not an integer", ErrInvalidEnv, EnvPrefix, i.name, v)
			}
			*i.dst = n
		}
	}

	if v, ok := get("VERBOSE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %sVERBOSE=%q is not a boolean", ErrInvalidEnv, EnvPrefix, v)
		}
		c.Verbose = b
	}

	return nil
}
