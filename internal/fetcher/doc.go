// Package fetcher retrieves single pages of the retailer's listing API.
//
// A Client issues one GET request per call to FetchPage and turns the
// response into a model.ListingPage. Transport problems of any kind
// (network errors, non-2xx statuses, bodies that are not JSON) are logged
// and replaced by an empty page so that a flaky upstream never aborts a
// run. Nothing is retried.
//
// Design decision: The HTTP layer is go-resty rather than a bare
// http.Client. Resty owns base URL joining, default headers and timeouts,
// while this package only decides which URL to request and how to read
// the answer. Proxies (HTTP or SOCKS5) are configured on the underlying
// transport, see NewTransport.
package fetcher
