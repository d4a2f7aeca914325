package model

// Watch is one configured query against the listing API.
// A Watch is immutable once loaded and produces exactly one report.
type Watch struct {
	// Label names the watch in reports and output file names.
	Label string

	// QueryPath is the API path, relative to the base URL, including any
	// query string (e.g. "meklet?q=macbook&sort=price").
	QueryPath string

	// MaxPrice is the inclusive price ceiling.
	MaxPrice float64

	// IncludeTerms are keywords of which at least one must match the
	// article (case-sensitive) or title (case-insensitive).
	// An empty list matches nothing.
	IncludeTerms []string

	// ExcludeTerms reject any item whose article or title contains one
	// of them (case-insensitive).
	ExcludeTerms []string

	// City restricts results to branches whose city contains this value
	// (case-insensitive). Nil disables the restriction.
	City *string
}

// HasIncludeTerms reports whether the watch can match anything.
// A watch without include terms always produces an empty result.
func (w Watch) HasIncludeTerms() bool {
	return len(w.IncludeTerms) > 0
}

// HasCity reports whether the watch restricts results by city.
func (w Watch) HasCity() bool {
	return w.City != nil && *w.City != ""
}

// CityName returns the configured city, or "" when unset.
func (w Watch) CityName() string {
	if w.City == nil {
		return ""
	}
	return *w.City
}
