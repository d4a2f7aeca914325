package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Upstream JSON keys of the fields the core interprets.
const (
	keyTitle        = "title"
	keyPrice        = "price"
	keyActualPrice  = "actual_price"
	keyArticle      = "article"
	keyURL          = "url"
	keyWarrantyTerm = "warranty_term"

	// keyBranch is spelled the way the listing API spells it.
	keyBranch = "branche"
)

// Item is a single product record returned by the listing API.
//
// Design decision: Only the fields the filters and reports need are
// decoded into typed members. Every other upstream field is kept in
// Extra so the JSON report reproduces the API record without the core
// having to know the full upstream schema. Items are never mutated once
// decoded.
type Item struct {
	// Title is the product name shown in listings.
	Title Value

	// Price is the list price.
	Price Value

	// ActualPrice is the discounted price. When present and non-empty it
	// is preferred over Price.
	ActualPrice Value

	// Article is the retailer's article code. It may be a number or a string.
	Article Value

	// URL links to the product page.
	URL Value

	// WarrantyTerm is the warranty period, when the API provides one.
	WarrantyTerm Value

	// Branch is the store location holding the item, if known.
	Branch *Branch

	// Extra holds all other upstream fields verbatim, keyed by JSON name.
	Extra map[string]json.RawMessage
}

// Branch describes the store that holds an item.
type Branch struct {
	// City is the branch city, e.g. "Rīga".
	City string

	// DisplayName is the human-readable branch name ("final_title" upstream).
	DisplayName string

	// raw is the original branch object, written back unchanged.
	raw json.RawMessage
}

type branchFields struct {
	City        json.RawMessage `json:"city"`
	DisplayName json.RawMessage `json:"final_title"`
}

// UnmarshalJSON implements json.Unmarshaler.
// Non-string city or name values are stringified rather than rejected.
func (b *Branch) UnmarshalJSON(data []byte) error {
	var f branchFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("decode branch: %w", err)
	}
	var city, name Value
	_ = city.UnmarshalJSON(f.City)        //nolint:errcheck // never fails
	_ = name.UnmarshalJSON(f.DisplayName) //nolint:errcheck // never fails
	b.City = city.String()
	b.DisplayName = name.String()
	b.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (b Branch) MarshalJSON() ([]byte, error) {
	if len(b.raw) > 0 {
		return b.raw, nil
	}
	return marshalNoEscape(struct {
		City        string `json:"city"`
		DisplayName string `json:"final_title"`
	}{b.City, b.DisplayName})
}

// UnmarshalJSON implements json.Unmarshaler.
func (it *Item) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decode item: %w", err)
	}

	*it = Item{}
	for key, raw := range fields {
		var target *Value
		switch key {
		case keyTitle:
			target = &it.Title
		case keyPrice:
			target = &it.Price
		case keyActualPrice:
			target = &it.ActualPrice
		case keyArticle:
			target = &it.Article
		case keyURL:
			target = &it.URL
		case keyWarrantyTerm:
			target = &it.WarrantyTerm
		case keyBranch:
			if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
				var b Branch
				if err := json.Unmarshal(trimmed, &b); err == nil {
					it.Branch = &b
					continue
				}
			}
			// A branch that is not an object (null, false) carries no
			// location; keep it verbatim for the report.
		}

		if target != nil {
			_ = target.UnmarshalJSON(raw) //nolint:errcheck // never fails
			continue
		}
		if it.Extra == nil {
			it.Extra = make(map[string]json.RawMessage)
		}
		it.Extra[key] = raw
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
// Fields that were absent upstream stay absent in the output.
func (it Item) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(it.Extra)+7)
	for k, v := range it.Extra {
		out[k] = v
	}

	known := []struct {
		key   string
		value Value
	}{
		{keyTitle, it.Title},
		{keyPrice, it.Price},
		{keyActualPrice, it.ActualPrice},
		{keyArticle, it.Article},
		{keyURL, it.URL},
		{keyWarrantyTerm, it.WarrantyTerm},
	}
	for _, f := range known {
		if !f.value.Absent() {
			out[f.key] = f.value.Raw()
		}
	}

	if it.Branch != nil {
		raw, err := it.Branch.MarshalJSON()
		if err != nil {
			return nil, err
		}
		out[keyBranch] = raw
	}

	return marshalNoEscape(out)
}

// marshalNoEscape encodes v like json.Marshal but leaves '<', '>' and '&'
// alone, so that URLs in listings are written back as received.
func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// BranchName returns the display name of the item's branch, or "".
func (it Item) BranchName() string {
	if it.Branch == nil {
		return ""
	}
	return it.Branch.DisplayName
}

// EffectivePrice returns the price the filters evaluate:
// ActualPrice when present and non-empty, otherwise Price.
// The returned Value is absent when neither field is usable.
func (it Item) EffectivePrice() Value {
	if !it.ActualPrice.Empty() {
		return it.ActualPrice
	}
	if !it.Price.Empty() {
		return it.Price
	}
	return Value{}
}
