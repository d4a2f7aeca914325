package fetcher

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/nao1215/pricewatch/internal/model"
)

const (
	// DefaultBaseURL is the listing API every query path is relative to.
	DefaultBaseURL = "https://veikals.banknote.lv/lv/"

	// DefaultUserAgent is sent with every request.
	DefaultUserAgent = "Mozilla/5.0 (compatible; BanknotePriceChecker/1.0)"

	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 30 * time.Second
)

// Client fetches listing pages from the retailer API.
// A Client is safe for concurrent use.
type Client struct {
	// http is the configured resty client. Its base URL, user agent,
	// extra headers and timeout apply to every request.
	http *resty.Client

	// logger receives a warning for every page that could not be fetched.
	logger *slog.Logger
}

// options collects the settings applied by Option values.
type options struct {
	userAgent string
	timeout   time.Duration
	proxyURL  string
	headers   map[string]string
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*options)

// WithUserAgent overrides DefaultUserAgent. An empty value is ignored.
func WithUserAgent(userAgent string) Option {
	return func(o *options) {
		if userAgent != "" {
			o.userAgent = userAgent
		}
	}
}

// WithTimeout sets the per-request timeout. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithProxy routes requests through an HTTP or SOCKS5 proxy.
// See NewTransport for the accepted forms.
func WithProxy(proxyURL string) Option {
	return func(o *options) {
		o.proxyURL = proxyURL
	}
}

// WithHeaders adds headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(o *options) {
		o.headers = headers
	}
}

// WithLogger sets the logger. If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// NewClient creates a Client for the API rooted at baseURL.
//
// The base URL is validated here, but no request is made. Query paths
// passed to FetchPage are joined to it with exactly one slash.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if !isValidBaseURL(baseURL) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}

	o := options{
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	transport, err := NewTransport(o.proxyURL)
	if err != nil {
		return nil, err
	}

	rc := resty.New().
		SetBaseURL(baseURL).
		SetTransport(transport).
		SetTimeout(o.timeout).
		SetLogger(restyLogger{logger: o.logger}).
		SetHeaders(o.headers).
		SetHeader("User-Agent", o.userAgent)

	return &Client{
		http:   rc,
		logger: o.logger,
	}, nil
}

// isValidBaseURL checks for an absolute http or https URL with a host.
func isValidBaseURL(baseURL string) bool {
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

// BaseURL returns the base URL requests are made against, without the
// trailing slash.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Get requests one page of queryPath and returns the raw response body.
// Any status outside 2xx is reported as ErrUnexpectedStatus.
func (c *Client) Get(ctx context.Context, queryPath string, page int) ([]byte, error) {
	target := WithPageParam(queryPath, page)

	res, err := c.http.R().
		SetContext(ctx).
		Get(target)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, res.StatusCode(), target)
	}
	return res.Body(), nil
}

// FetchPage requests one page of queryPath and decodes it.
//
// The body is decoded as JSON whatever content type the server claims.
// Any failure yields an empty page with Failed set; the error is logged
// at warn level and never returned.
func (c *Client) FetchPage(ctx context.Context, queryPath string, page int) model.ListingPage {
	body, err := c.Get(ctx, queryPath, page)
	if err != nil {
		c.logger.Warn("failed to fetch page",
			"query", queryPath,
			"page", page,
			"error", err,
		)
		return failedPage()
	}

	listing, err := model.DecodeListingPage(body)
	if err != nil {
		c.logger.Warn("failed to decode page",
			"query", queryPath,
			"page", page,
			"bytes", len(body),
			"error", err,
		)
		return failedPage()
	}

	c.logger.Debug("fetched page",
		"query", queryPath,
		"page", page,
		"items", len(listing.Items),
	)
	return listing
}

func failedPage() model.ListingPage {
	p := model.EmptyPage()
	p.Failed = true
	return p
}
