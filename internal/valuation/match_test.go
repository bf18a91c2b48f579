package valuation

import (
	"testing"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

func TestMatchCatalog(t *testing.T) {
	entries := []catalog.MenuEntry{
		{Name: "Salmon Roll", Category: "Sushi"},
		{Name: "Salmon", Category: "Sashimi"},
		{Name: "紅魽 (Amberjack)", Category: "Sashimi"},
		{Name: "", Category: "Broken"},
	}

	tests := []struct {
		name      string
		query     string
		wantName  string
		wantFound bool
	}{
		{"candidate contains catalog name", "Salmon Roll Deluxe", "Salmon Roll", true},
		{"first match wins on ambiguity", "Salmon", "Salmon Roll", true},
		{"case insensitive", "salmon roll", "Salmon Roll", true},
		{"bilingual alias", "Amberjack Sashimi", "紅魽 (Amberjack)", true},
		{"chinese alias", "紅魽", "紅魽 (Amberjack)", true},
		{"no match", "Tuna", "", false},
		{"blank never matches", "  ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchCatalog(tt.query, entries)
			if ok != tt.wantFound {
				t.Fatalf("found = %v, want %v", ok, tt.wantFound)
			}
			if got.Name != tt.wantName {
				t.Fatalf("matched %q, want %q", got.Name, tt.wantName)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	var entries []catalog.MenuEntry
	for _, n := range []string{"Tuna A", "Tuna B", "tuna C", "Tuna D", "Tuna E", "Tuna F", "Tuna G", "Eel"} {
		entries = append(entries, catalog.MenuEntry{Name: n})
	}

	got := Suggest("TUNA", entries, 0)
	if len(got) != SuggestionLimit {
		t.Fatalf("expected %d suggestions, got %d", SuggestionLimit, len(got))
	}
	if got[2].Name != "tuna C" {
		t.Fatalf("expected catalog order, got %q", got[2].Name)
	}

	if got := Suggest("", entries, 0); got != nil {
		t.Fatalf("expected no suggestions for blank query, got %d", len(got))
	}
	if got := Suggest("eel", entries, 0); len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(got))
	}
}

func TestEnrich(t *testing.T) {
	entries := []catalog.MenuEntry{
		{Category: "Sashimi", Name: "鮭魚 (Salmon)", Price: 70, RestaurantPrice: 120, Calories: 55},
		{Category: "Drink", Name: "Draft Beer", Price: 180, Calories: 0, ML: 500},
	}

	got := Enrich([]core.Guess{
		{Name: "Salmon Sashimi", Price: 999, Calories: 999, Count: 2},
		{Name: "Draft Beer", Calories: 140},
		{Name: "Mystery Dish", Price: 50},
	}, entries)

	if len(got) != 3 {
		t.Fatalf("expected 3 items, got %d", len(got))
	}

	salmon := got[0]
	if salmon.Category != "Sashimi" || salmon.Price != 70 || salmon.RestaurantPrice != 120 || salmon.Calories != 55 {
		t.Fatalf("catalog values not preferred: %+v", salmon)
	}
	if salmon.Count != 2 {
		t.Fatalf("expected count 2, got %d", salmon.Count)
	}

	beer := got[1]
	if beer.Calories != 140 {
		t.Fatalf("expected recognizer calories when catalog has none, got %v", beer.Calories)
	}
	if beer.Count != 1 || beer.ML != 500 {
		t.Fatalf("unexpected beer item: %+v", beer)
	}

	mystery := got[2]
	if mystery.Category != core.DefaultCategory || mystery.Price != 50 || mystery.Calories != 0 {
		t.Fatalf("unexpected unmatched item: %+v", mystery)
	}
}
