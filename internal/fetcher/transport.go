package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"
)

// idleConnTimeout bounds how long pooled connections are kept between pages.
const idleConnTimeout = 30 * time.Second

// NewTransport creates the HTTP transport used by the Client.
//
// proxyURL selects how connections are made:
//   - "" uses a direct connection (HTTP_PROXY and friends still apply)
//   - http://host:port or https://host:port uses an HTTP CONNECT proxy
//   - socks5://[user:pass@]host:port or socks5h://... dials through SOCKS5
//
// Pages of one watch are fetched strictly one after another, so the
// connection pool is kept small.
func NewTransport(proxyURL string) (*http.Transport, error) {
	transport := newBaseTransport()
	if proxyURL == "" {
		return transport, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidProxyURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %s has no host", ErrInvalidProxyURL, u.Redacted())
	}

	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		// The SOCKS5 dialer resolves and connects; an environment proxy
		// on top of it would be wrong.
		transport.Proxy = nil
		transport.DialContext = contextDialer(dialer)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProxyScheme, u.Scheme)
	}
	return transport, nil
}

// newBaseTransport clones http.DefaultTransport with a smaller pool.
func newBaseTransport() *http.Transport {
	var transport *http.Transport
	if base, ok := http.DefaultTransport.(*http.Transport); ok {
		transport = base.Clone()
	} else {
		transport = &http.Transport{Proxy: http.ProxyFromEnvironment}
	}
	transport.MaxIdleConns = 10
	transport.MaxIdleConnsPerHost = 2
	transport.IdleConnTimeout = idleConnTimeout
	return transport
}

// contextDialer adapts a proxy.Dialer to the DialContext signature.
//
// The SOCKS5 dialer from x/net implements proxy.ContextDialer. For other
// dialers the dial runs in a goroutine so that cancellation is honoured;
// the underlying connection attempt may then continue briefly.
func contextDialer(d proxy.Dialer) func(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext
	}

	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		type dialResult struct {
			conn net.Conn
			err  error
		}
		resultCh := make(chan dialResult, 1)

		go func() {
			conn, err := d.Dial(network, addr)
			resultCh <- dialResult{conn, err}
		}()

		select {
		case result := <-resultCh:
			return result.conn, result.err
		case <-ctx.Done():
			go func() {
				if result := <-resultCh; result.conn != nil {
					_ = result.conn.Close() //nolint:errcheck // abandoned connection
				}
			}()
			return nil, ctx.Err()
		}
	}
}
