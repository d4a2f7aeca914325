package config

import (
	"fmt"
	"slices"
	"strings"

	"dario.cat/mergo"

	"github.com/nao1215/pricewatch/internal/model"
)

// WatchEntry is one watch as written in a configuration file.
//
// Both the current key names and the legacy ones of the old config.json
// array are accepted: title for label, filter for query_path,
// search_params for include_terms and exclude_params for exclude_terms.
// When both spellings are present the current one wins.
type WatchEntry struct {
	Label        string   `yaml:"label,omitempty" json:"label,omitempty"`
	QueryPath    string   `yaml:"query_path,omitempty" json:"query_path,omitempty"`
	MaxPrice     *float64 `yaml:"max_price,omitempty" json:"max_price,omitempty"`
	IncludeTerms []string `yaml:"include_terms,omitempty" json:"include_terms,omitempty"`
	ExcludeTerms []string `yaml:"exclude_terms,omitempty" json:"exclude_terms,omitempty"`
	City         *string  `yaml:"city,omitempty" json:"city,omitempty"`

	Title         string   `yaml:"title,omitempty" json:"title,omitempty"`
	Filter        string   `yaml:"filter,omitempty" json:"filter,omitempty"`
	SearchParams  []string `yaml:"search_params,omitempty" json:"search_params,omitempty"`
	ExcludeParams []string `yaml:"exclude_params,omitempty" json:"exclude_params,omitempty"`
}

// normalize folds the legacy keys into the current ones and returns a
// copy that shares no slices with e.
func (e WatchEntry) normalize() WatchEntry {
	out := WatchEntry{
		Label:        strings.TrimSpace(e.Label),
		QueryPath:    strings.TrimSpace(e.QueryPath),
		MaxPrice:     e.MaxPrice,
		IncludeTerms: slices.Clone(e.IncludeTerms),
		ExcludeTerms: slices.Clone(e.ExcludeTerms),
		City:         e.City,
	}
	if out.Label == "" {
		out.Label = strings.TrimSpace(e.Title)
	}
	if out.QueryPath == "" {
		out.QueryPath = strings.TrimSpace(e.Filter)
	}
	if len(out.IncludeTerms) == 0 {
		out.IncludeTerms = slices.Clone(e.SearchParams)
	}
	if len(out.ExcludeTerms) == 0 {
		out.ExcludeTerms = slices.Clone(e.ExcludeParams)
	}
	return out
}

// toWatch validates a normalized entry and converts it.
func (e WatchEntry) toWatch() (model.Watch, error) {
	if e.Label == "" {
		return model.Watch{}, ErrMissingLabel
	}
	if e.QueryPath == "" {
		return model.Watch{}, ErrMissingQueryPath
	}
	if e.MaxPrice == nil {
		return model.Watch{}, ErrMissingMaxPrice
	}
	if *e.MaxPrice < 0 {
		return model.Watch{}, ErrInvalidMaxPrice
	}

	w := model.Watch{
		Label:        e.Label,
		QueryPath:    strings.TrimPrefix(e.QueryPath, "/"),
		MaxPrice:     *e.MaxPrice,
		IncludeTerms: e.IncludeTerms,
		ExcludeTerms: e.ExcludeTerms,
	}
	if w.IncludeTerms == nil {
		w.IncludeTerms = []string{}
	}
	if w.ExcludeTerms == nil {
		w.ExcludeTerms = []string{}
	}
	if e.City != nil && strings.TrimSpace(*e.City) != "" {
		city := strings.TrimSpace(*e.City)
		w.City = &city
	}
	return w, nil
}

// BuildWatches converts the file's watch entries to model watches.
//
// The defaults entry fills in every field a watch leaves unset; list
// fields are appended instead, so a default exclude term applies on top
// of a watch's own exclusions. A field set explicitly to zero (max_price: 0,
// city: "") counts as set. Errors name the watch by position and, when
// known, label.
func BuildWatches(f *File) ([]model.Watch, error) {
	defaults := f.Defaults.normalize()

	watches := make([]model.Watch, 0, len(f.Watches))
	for i, raw := range f.Watches {
		entry := raw.normalize()
		if err := mergo.Merge(&entry, defaults, mergo.WithAppendSlice, mergo.WithoutDereference); err != nil {
			return nil, fmt.Errorf("watch #%d: failed to apply defaults: %w", i+1, err)
		}

		w, err := entry.toWatch()
		if err != nil {
			if entry.Label != "" {
				return nil, fmt.Errorf("watch #%d (%q): %w", i+1, entry.Label, err)
			}
			return nil, fmt.Errorf("watch #%d: %w", i+1, err)
		}
		watches = append(watches, w)
	}
	return watches, nil
}
