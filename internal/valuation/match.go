package valuation

import (
	"strings"
	"unicode/utf8"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

const SuggestionLimit = 6

// MatchCatalog finds the catalog entry for a dish name. Either name may
// contain the other; the first entry in catalog order wins. When nothing
// matches, bilingual parts of the catalog name ("鮭魚 (Salmon)") are tried.
func MatchCatalog(name string, entries []catalog.MenuEntry) (catalog.MenuEntry, bool) {
	needle := normalize(name)
	if needle == "" {
		return catalog.MenuEntry{}, false
	}

	for _, e := range entries {
		n := normalize(e.Name)
		if n == "" {
			continue
		}
		if strings.Contains(n, needle) || strings.Contains(needle, n) {
			return e, true
		}
	}

	for _, e := range entries {
		for _, alias := range aliases(e.Name) {
			if utf8.RuneCountInString(alias) >= 2 && strings.Contains(needle, alias) {
				return e, true
			}
		}
	}

	return catalog.MenuEntry{}, false
}

// Suggest returns catalog entries whose name contains query, case-insensitively.
func Suggest(query string, entries []catalog.MenuEntry, limit int) []catalog.MenuEntry {
	q := normalize(query)
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = SuggestionLimit
	}

	var out []catalog.MenuEntry
	for _, e := range entries {
		if strings.Contains(normalize(e.Name), q) {
			out = append(out, e)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// Enrich converts recognizer guesses into plate items, preferring catalog
// values for anything the catalog knows.
func Enrich(guesses []core.Guess, entries []catalog.MenuEntry) []core.PlateItem {
	items := make([]core.PlateItem, 0, len(guesses))

	for _, g := range guesses {
		item := core.PlateItem{
			Name:     strings.TrimSpace(g.Name),
			Price:    nonNegative(g.Price.Float()),
			Calories: nonNegative(g.Calories.Float()),
			Count:    guessCount(g.Count),
			Category: core.DefaultCategory,
		}

		if e, ok := MatchCatalog(item.Name, entries); ok {
			if e.Category != "" {
				item.Category = e.Category
			}
			if e.Price > 0 {
				item.Price = e.Price
			}
			if e.Calories > 0 {
				item.Calories = e.Calories
			}
			item.RestaurantPrice = e.RestaurantPrice
			item.ML = e.ML
		}

		items = append(items, item)
	}

	return items
}

// lookup prefers an exact name before falling back to MatchCatalog.
func lookup(name string, entries []catalog.MenuEntry) (catalog.MenuEntry, bool) {
	for _, e := range entries {
		if e.Name == name && name != "" {
			return e, true
		}
	}
	return MatchCatalog(name, entries)
}

func guessCount(n core.Number) int {
	c := int(n.Float() + 0.5)
	if c < 1 {
		return 1
	}
	return c
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func aliases(name string) []string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		switch r {
		case '(', ')', '（', '）', '/':
			return true
		}
		return false
	})

	var out []string
	for _, p := range parts {
		if p = normalize(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
