// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// The listing API is public, but a watch configuration may carry a session
// cookie or an authorization header, and the proxy URL may embed a user name
// and password. SecureHandler keeps those out of the log:
//   - Attributes whose key names a credential (Cookie, Authorization,
//     Proxy-Authorization, anything containing "token" or "password")
//   - Values that look like bearer, basic or JWT credentials
//   - The userinfo part of any URL in a message, string value or error
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Warn("page request failed",
//	    "proxy", "socks5://user:pw@127.0.0.1:1080", // logged as socks5://***REDACTED***@127.0.0.1:1080
//	)
//	slog.SetDefault(logger)
package log
