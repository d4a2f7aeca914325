package model

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// Changes summarizes how a watch's matches differ from the previous run.
type Changes struct {
	// Previous is the number of matches in the previous report.
	Previous int `json:"previous"`

	// Added are items present now but not in the previous report.
	Added []Item `json:"-"`

	// Removed are items from the previous report that no longer match.
	Removed []Item `json:"-"`

	// AddedCount and RemovedCount mirror the slice lengths for JSON output.
	AddedCount   int `json:"added"`
	RemovedCount int `json:"removed"`
}

// HasChanges reports whether anything was added or removed.
func (c *Changes) HasChanges() bool {
	return c != nil && (len(c.Added) > 0 || len(c.Removed) > 0)
}

// Fingerprint returns a stable identifier for an item.
// Items with a URL are identified by it; otherwise the article code and
// title are combined. Price is deliberately left out so that a price
// change does not look like a different product.
func Fingerprint(it Item) string {
	var key string
	if u := it.URL.String(); u != "" {
		key = "url\x00" + u
	} else {
		key = "article\x00" + it.Article.String() + "\x00" + it.Title.String()
	}
	sum := sha3.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16])
}

// CompareItems computes the items added and removed between two runs.
// Order follows the input slices.
func CompareItems(previous, current []Item) *Changes {
	prevKeys := make(map[string]struct{}, len(previous))
	for _, it := range previous {
		prevKeys[Fingerprint(it)] = struct{}{}
	}
	curKeys := make(map[string]struct{}, len(current))
	for _, it := range current {
		curKeys[Fingerprint(it)] = struct{}{}
	}

	changes := &Changes{Previous: len(previous)}
	for _, it := range current {
		if _, ok := prevKeys[Fingerprint(it)]; !ok {
			changes.Added = append(changes.Added, it)
		}
	}
	for _, it := range previous {
		if _, ok := curKeys[Fingerprint(it)]; !ok {
			changes.Removed = append(changes.Removed, it)
		}
	}
	changes.AddedCount = len(changes.Added)
	changes.RemovedCount = len(changes.Removed)
	return changes
}
