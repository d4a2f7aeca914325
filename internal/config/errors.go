package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and the loaders and
// provide specific information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances at each check. This allows callers to use
// errors.Is() for programmatic error handling. Loader errors wrap them
// with the offending file, watch or variable name.
var (
	// ErrConfigNotFound is returned when no configuration file exists.
	ErrConfigNotFound = errors.New("configuration file not found: run 'pricewatch init' or pass --config")

	// ErrInvalidConfigFile is returned when a configuration file cannot be parsed.
	ErrInvalidConfigFile = errors.New("invalid configuration file")

	// ErrInvalidBaseURL is returned when the base URL is not an absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL: must be an absolute http or https URL")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidInterval is returned when the run interval is negative.
	ErrInvalidInterval = errors.New("invalid interval: must be non-negative")

	// ErrInvalidMaxPages is returned when the page ceiling is negative.
	ErrInvalidMaxPages = errors.New("invalid max pages: must be non-negative")

	// ErrInvalidDuration is returned when a duration value cannot be parsed.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrConflictingReportFormats is returned when both --json-only and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json-only and --markdown cannot be used together")

	// ErrInvalidLogFormat is returned for a log format other than text or json.
	ErrInvalidLogFormat = errors.New("invalid log format: must be 'text' or 'json'")

	// ErrMissingOutputDir is returned when the output directory is empty.
	ErrMissingOutputDir = errors.New("output directory must not be empty")

	// ErrNoWatches is returned when the configuration defines no watches.
	ErrNoWatches = errors.New("no watches configured")

	// ErrDuplicateLabel is returned when two watches share a label.
	// Their reports would overwrite each other.
	ErrDuplicateLabel = errors.New("duplicate watch label")

	// ErrReportNameCollision is returned when two labels map to the same
	// report file name.
	ErrReportNameCollision = errors.New("watch labels share a report file name")

	// ErrUnknownWatch is returned when --only names a label that is not configured.
	ErrUnknownWatch = errors.New("unknown watch label")

	// ErrMissingLabel is returned for a watch without label (or legacy title).
	ErrMissingLabel = errors.New("watch has no label")

	// ErrMissingQueryPath is returned for a watch without query_path (or legacy filter).
	ErrMissingQueryPath = errors.New("watch has no query_path")

	// ErrMissingMaxPrice is returned for a watch without max_price.
	ErrMissingMaxPrice = errors.New("watch has no max_price")

	// ErrInvalidMaxPrice is returned for a negative max_price.
	ErrInvalidMaxPrice = errors.New("invalid max_price: must be non-negative")


	// ErrInvalidEnv is returned when a PRICEWATCH_* variable has an invalid value.
	ErrInvalidEnv = errors.New("invalid environment variable")
)
