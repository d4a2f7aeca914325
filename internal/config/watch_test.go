package config

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/pricewatch/internal/model"
)

func ptr[T any](v T) *T {
	return &v
}

// TestBuildWatches tests conversion of file entries to watches.
func TestBuildWatches(t *testing.T) {
	t.Parallel()

	t.Run("current keys", func(t *testing.T) {
		t.Parallel()

		got, err := BuildWatches(&File{Watches: []WatchEntry{{
			Label:        "MacBook results",
			QueryPath:    "/meklet?q=macbook",
			MaxPrice:     ptr(600.0),
			IncludeTerms: []string{"MacBook"},
			City:         ptr(" Rīga "),
		}}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []model.Watch{{
			Label:        "MacBook results",
			QueryPath:    "meklet?q=macbook",
			MaxPrice:     600,
			IncludeTerms: []string{"MacBook"},
			ExcludeTerms: []string{},
			City:         ptr("Rīga"),
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("watches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("legacy keys", func(t *testing.T) {
		t.Parallel()

		got, err := BuildWatches(&File{Watches: []WatchEntry{{
			Title:         "iPhone results",
			Filter:        "meklet?q=iphone",
			MaxPrice:      ptr(300.0),
			SearchParams:  []string{"iPhone"},
			ExcludeParams: []string{"case"},
		}}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []model.Watch{{
			Label:        "iPhone results",
			QueryPath:    "meklet?q=iphone",
			MaxPrice:     300,
			IncludeTerms: []string{"iPhone"},
			ExcludeTerms: []string{"case"},
		}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("watches mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("defaults fill unset fields and append lists", func(t *testing.T) {
		t.Parallel()

		f := &File{
			Defaults: WatchEntry{
				MaxPrice:     ptr(500.0),
				ExcludeTerms: []string{"bojāts"},
				City:         ptr("Rīga"),
			},
			Watches: []WatchEntry{
				{Label: "a", QueryPath: "q=a", IncludeTerms: []string{"a"}, ExcludeTerms: []string{"case"}},
				{Label: "b", QueryPath: "q=b", IncludeTerms: []string{"b"}, MaxPrice: ptr(0.0), City: ptr("")},
			},
		}

		got, err := BuildWatches(f)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got[0].MaxPrice != 500 {
			t.Errorf("expected default max price 500, got %v", got[0].MaxPrice)
		}
		if diff := cmp.Diff([]string{"case", "bojāts"}, got[0].ExcludeTerms); diff != "" {
			t.Errorf("exclude terms mismatch (-want +got):\n%s", diff)
		}
		if got[0].CityName() != "Rīga" {
			t.Errorf("expected default city, got %q", got[0].CityName())
		}

		if got[1].MaxPrice != 0 {
			t.Errorf("expected explicit max price 0 kept, got %v", got[1].MaxPrice)
		}
		if got[1].HasCity() {
			t.Errorf("expected explicit empty city to disable default, got %q", got[1].CityName())
		}
		if *f.Watches[1].MaxPrice != 0 || len(f.Watches[0].ExcludeTerms) != 1 {
			t.Error("expected file entries to stay unchanged")
		}
	})

	t.Run("watch without include terms is kept", func(t *testing.T) {
		t.Parallel()

		got, err := BuildWatches(&File{Watches: []WatchEntry{
			{Label: "Lamps", QueryPath: "meklet?q=lampa", MaxPrice: ptr(20.0), SearchParams: []string{}},
			{Label: "Phones", QueryPath: "meklet?q=iphone", MaxPrice: ptr(300.0), IncludeTerms: []string{"iPhone"}},
		}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("expected 2 watches, got %d", len(got))
		}
		if got[0].IncludeTerms == nil || len(got[0].IncludeTerms) != 0 {
			t.Errorf("expected empty include terms, got %v", got[0].IncludeTerms)
		}
		if got[0].HasIncludeTerms() {
			t.Error("expected HasIncludeTerms to be false")
		}
	})

	t.Run("validation errors name the watch", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			entry WatchEntry
			want  error
		}{
			{"missing label", WatchEntry{QueryPath: "q", MaxPrice: ptr(1.0), IncludeTerms: []string{"x"}}, ErrMissingLabel},
			{"missing query", WatchEntry{Label: "a", MaxPrice: ptr(1.0), IncludeTerms: []string{"x"}}, ErrMissingQueryPath},
			{"missing price", WatchEntry{Label: "a", QueryPath: "q", IncludeTerms: []string{"x"}}, ErrMissingMaxPrice},
			{"negative price", WatchEntry{Label: "a", QueryPath: "q", MaxPrice: ptr(-1.0), IncludeTerms: []string{"x"}}, ErrInvalidMaxPrice},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				_, err := BuildWatches(&File{Watches: []WatchEntry{tt.entry}})
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}
