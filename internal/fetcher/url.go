package fetcher

import (
	"net/url"
	"strconv"
	"strings"
)

// PageParam is the query parameter that selects the result page.
const PageParam = "page"

// WithPageParam returns pathAndQuery with its page parameter set to page.
//
// The query string is everything after the first '?'. An existing page
// parameter is overwritten (all occurrences collapse into one) and other
// parameters are kept. Malformed pairs in the query are skipped rather
// than rejected. Parameters are re-encoded in key order.
func WithPageParam(pathAndQuery string, page int) string {
	pathOnly, rawQuery, _ := strings.Cut(pathAndQuery, "?")

	params, _ := url.ParseQuery(rawQuery) //nolint:errcheck // keep whatever pairs parsed
	params.Set(PageParam, strconv.Itoa(page))

	encoded := params.Encode()
	if encoded == "" {
		return pathOnly
	}
	return pathOnly + "?" + encoded
}
