package catalog

import (
	"math"
	"strconv"
	"strings"
)

// column positions resolved from the header row, -1 when absent
type columns struct {
	category        int
	name            int
	price           int
	restaurantPrice int
	calories        int
	desc            int
	ml              int
}

// Parse turns a published sheet export into catalog entries.
// Malformed rows are skipped; it never fails.
func Parse(csvText string) []MenuEntry {
	csvText = strings.TrimPrefix(csvText, "\ufeff")
	lines := strings.Split(strings.ReplaceAll(csvText, "\r\n", "\n"), "\n")
	if len(lines) == 0 {
		return nil
	}

	cols := resolveColumns(splitLine(strings.TrimSpace(lines[0])))

	var entries []MenuEntry
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		tokens := splitLine(line)
		if len(tokens) < 3 {
			continue
		}

		entries = append(entries, MenuEntry{
			Category:        field(tokens, cols.category),
			Name:            field(tokens, cols.name),
			Price:           number(field(tokens, cols.price)),
			RestaurantPrice: number(field(tokens, cols.restaurantPrice)),
			Calories:        number(field(tokens, cols.calories)),
			Desc:            field(tokens, cols.desc),
			ML:              number(field(tokens, cols.ml)),
		})
	}

	return entries
}

func resolveColumns(header []string) columns {
	lower := make([]string, len(header))
	for i, h := range header {
		lower[i] = strings.ToLower(strings.TrimSpace(h))
	}

	find := func(match func(h string) bool) int {
		for i, h := range lower {
			if match(h) {
				return i
			}
		}
		return -1
	}

	cols := columns{
		category: find(func(h string) bool { return containsAny(h, "category", "分類") }),
		name:     find(func(h string) bool { return containsAny(h, "name", "品名") }),
		price: find(func(h string) bool {
			return containsAny(h, "price", "市價") && !containsAny(h, "restaurant", "hotel", "定價")
		}),
		restaurantPrice: find(func(h string) bool { return containsAny(h, "restaurant", "定價", "飯店", "hotel") }),
		calories:        find(func(h string) bool { return containsAny(h, "calor", "熱量") }),
		desc:            find(func(h string) bool { return containsAny(h, "desc", "描述") }),
		ml:              find(func(h string) bool { return h == "ml" || containsAny(h, "volume", "容量") }),
	}

	// headerless exports use the fixed column order
	if cols.category == -1 {
		cols = columns{
			category:        0,
			name:            1,
			price:           2,
			calories:        3,
			desc:            4,
			restaurantPrice: 5,
			ml:              -1,
		}
	}

	return cols
}

// splitLine tokenizes one CSV line. Quotes toggle quoting; a doubled quote
// is a literal quote character.
func splitLine(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		quoted  bool
	)

	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"' && i+1 < len(runes) && runes[i+1] == '"':
			current.WriteRune('"')
			i++
		case r == '"':
			quoted = !quoted
		case r == ',' && !quoted:
			tokens = append(tokens, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	tokens = append(tokens, strings.TrimSpace(current.String()))

	return tokens
}

func field(tokens []string, idx int) string {
	if idx < 0 || idx >= len(tokens) {
		return ""
	}
	return tokens[idx]
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
