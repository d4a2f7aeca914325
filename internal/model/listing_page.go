package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
)

// ListingPage is one page of a listing API response.
// It only lives long enough for the aggregator to consume it.
type ListingPage struct {
	// Items are the products on this page, in API order.
	// Never nil after decoding; a response without a usable "data"
	// array yields an empty slice.
	Items []Item

	// To is the API's running counter: the index of the last item on
	// this page across the whole result set. Nil when not reported.
	To *int

	// Total is the size of the whole result set. Nil when not reported.
	Total *int

	// LastPage is the index of the final page. Nil when not reported.
	LastPage *int

	// Failed marks a page substituted for a request that could not be
	// completed or decoded.
	Failed bool
}

// EmptyPage returns a page with no items and no pagination metadata.
func EmptyPage() ListingPage {
	return ListingPage{Items: []Item{}}
}

type listingPageJSON struct {
	Data     json.RawMessage `json:"data"`
	To       json.RawMessage `json:"to"`
	Total    json.RawMessage `json:"total"`
	LastPage json.RawMessage `json:"last_page"`
}

// DecodeListingPage parses a listing API response body.
//
// Design decision: Pagination counters are only trusted when they are
// JSON numbers; a counter sent as a string or null is treated as missing
// so the aggregator's fallback rules apply. Elements of "data" that are
// not objects are kept as empty items so running counts stay aligned
// with the API.
func DecodeListingPage(body []byte) (ListingPage, error) {
	var envelope listingPageJSON
	if err := json.Unmarshal(body, &envelope); err != nil {
		return EmptyPage(), fmt.Errorf("decode listing page: %w", err)
	}

	page := ListingPage{
		Items:    decodeItems(envelope.Data),
		To:       optionalInt(envelope.To),
		Total:    optionalInt(envelope.Total),
		LastPage: optionalInt(envelope.LastPage),
	}
	return page, nil
}

// decodeItems decodes the "data" array. Anything other than an array
// yields an empty slice.
func decodeItems(data json.RawMessage) []Item {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []Item{}
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return []Item{}
	}

	items := make([]Item, 0, len(elems))
	for i, elem := range elems {
		var it Item
		if err := json.Unmarshal(elem, &it); err != nil {
			slog.Debug("listing element is not an object", "index", i, "error", err)
			it = Item{}
		}
		items = append(items, it)
	}
	return items
}

// optionalInt returns a pointer to the integer value of a JSON number,
// or nil for anything that is not a finite number.
func optionalInt(raw json.RawMessage) *int {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	c := trimmed[0]
	if c != '-' && (c < '0' || c > '9') {
		return nil
	}

	var f float64
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	n := int(f)
	return &n
}
