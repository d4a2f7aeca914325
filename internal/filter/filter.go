package filter

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/pricewatch/internal/model"
)

// Reason identifies the criterion that rejected an item.
type Reason string

const (
	// ReasonNone means the item passed every criterion.
	ReasonNone Reason = ""
	// ReasonPrice means the effective price exceeds the ceiling.
	ReasonPrice Reason = "price"
	// ReasonInclude means no include term matched.
	ReasonInclude Reason = "include"
	// ReasonExclude means an exclude term matched.
	ReasonExclude Reason = "exclude"
	// ReasonCity means the branch city does not contain the watch's city.
	ReasonCity Reason = "city"
)

// Filter evaluates items against one watch.
// Terms are lower-cased once at construction. A Filter is not safe for
// concurrent use because the underlying caser keeps state.
type Filter struct {
	maxPrice decimal.Decimal

	include      []string
	includeLower []string
	excludeLower []string

	cityLower string
	hasCity   bool

	lower cases.Caser
}

// New creates a Filter for the given watch.
func New(w model.Watch) *Filter {
	f := &Filter{
		maxPrice: decimal.NewFromFloat(w.MaxPrice),
		include:  w.IncludeTerms,
		hasCity:  w.HasCity(),
		lower:    cases.Lower(language.Und),
	}
	f.includeLower = make([]string, len(w.IncludeTerms))
	for i, term := range w.IncludeTerms {
		f.includeLower[i] = f.toLower(term)
	}
	f.excludeLower = make([]string, len(w.ExcludeTerms))
	for i, term := range w.ExcludeTerms {
		f.excludeLower[i] = f.toLower(term)
	}
	if f.hasCity {
		f.cityLower = f.toLower(w.CityName())
	}
	return f
}

// Apply returns the items that satisfy the watch, preserving input order.
// The result is never nil.
func Apply(items []model.Item, w model.Watch) []model.Item {
	f := New(w)
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// Match reports whether the item passes every criterion.
func (f *Filter) Match(it model.Item) bool {
	return f.Check(it) == ReasonNone
}

// Check returns the first criterion the item fails, or ReasonNone.
// Criteria are evaluated in the order price, include, exclude, city.
func (f *Filter) Check(it model.Item) Reason {
	if EffectivePrice(it).GreaterThan(f.maxPrice) {
		return ReasonPrice
	}

	article, title := f.fields(it)

	if !f.matchesInclude(article, title) {
		return ReasonInclude
	}
	if f.matchesExclude(article, title) {
		return ReasonExclude
	}
	if !f.matchesCity(it) {
		return ReasonCity
	}
	return ReasonNone
}

// searchable holds the text an item is matched on.
// ok is false when the field is missing or empty upstream.
type searchable struct {
	text  string
	lower string
	ok    bool
}

func (f *Filter) fields(it model.Item) (article, title searchable) {
	if !it.Article.Empty() {
		s := it.Article.String()
		article = searchable{text: s, lower: f.toLower(s), ok: true}
	}
	if !it.Title.Empty() {
		s := it.Title.String()
		title = searchable{text: s, lower: f.toLower(s), ok: true}
	}
	return article, title
}

// matchesInclude is case-sensitive on the article code and
// case-insensitive on the title.
func (f *Filter) matchesInclude(article, title searchable) bool {
	for i, term := range f.include {
		if article.ok && strings.Contains(article.text, term) {
			return true
		}
		if title.ok && strings.Contains(title.lower, f.includeLower[i]) {
			return true
		}
	}
	return false
}

func (f *Filter) matchesExclude(article, title searchable) bool {
	for _, term := range f.excludeLower {
		if article.ok && strings.Contains(article.lower, term) {
			return true
		}
		if title.ok && strings.Contains(title.lower, term) {
			return true
		}
	}
	return false
}

// matchesCity compares lower-cased text only. Accents are significant:
// "riga" does not match "Rīga".
func (f *Filter) matchesCity(it model.Item) bool {
	if !f.hasCity {
		return true
	}
	if it.Branch == nil || it.Branch.City == "" {
		return false
	}
	return strings.Contains(f.toLower(it.Branch.City), f.cityLower)
}

func (f *Filter) toLower(s string) string {
	return f.lower.String(s)
}
