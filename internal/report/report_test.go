package report

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/nao1215/pricewatch/internal/model"
)

// sampleItems is a small listing with the fields the reports display.
const sampleItems = `[
	{
		"title": "MacBook Air 13",
		"price": "649.00",
		"actual_price": "599.00",
		"article": 100234,
		"warranty_term": "12 months",
		"url": "https://veikals.banknote.lv/lv/p/100234?ref=a&b=c",
		"branche": {"city": "Rīga", "final_title": "Rīga, Brīvības iela 100"},
		"image": "mba.jpg"
	},
	{
		"title": "MacBook <Pro> | 14",
		"price": 899,
		"actual_price": null,
		"article": "MBP-14"
	}
]`

// createTestResult creates a finished result with sample data.
func createTestResult(t *testing.T) *model.WatchResult {
	t.Helper()

	var items []model.Item
	if err := json.Unmarshal([]byte(sampleItems), &items); err != nil {
		t.Fatalf("failed to decode sample items: %v", err)
	}

	result := model.NewWatchResult(model.Watch{
		Label:        "MacBook results",
		QueryPath:    "meklet?q=macbook",
		MaxPrice:     900,
		IncludeTerms: []string{"macbook"},
	})
	result.Aggregated = items
	result.Filtered = items
	result.Pages = 1
	result.FinishedAt = result.StartedAt.Add(1500 * time.Millisecond)
	return result
}

// mustDecodeItem decodes a single JSON object into an Item.
func mustDecodeItem(t *testing.T, s string) model.Item {
	t.Helper()

	var it model.Item
	if err := json.Unmarshal([]byte(s), &it); err != nil {
		t.Fatalf("failed to decode item: %v", err)
	}
	return it
}
