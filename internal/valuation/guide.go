package valuation

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
)

type SortOrder string

const (
	SortCPDesc      SortOrder = "cp_desc"
	SortPriceDesc   SortOrder = "price_desc"
	SortCaloriesAsc SortOrder = "cal_asc"
)

const AllCategories = "All"

// lowCalorieCutoff hides tea and water from the ranking view.
const lowCalorieCutoff = 5

type GuideOptions struct {
	Category          string
	Sort              SortOrder
	Ranking           bool
	ExcludeLowCalorie bool
}

// GuideEntry is a catalog entry valued in the current mode.
type GuideEntry struct {
	catalog.MenuEntry
	CategoryLabel string  `json:"categoryLabel"`
	DisplayPrice  float64 `json:"displayPrice"`
	CP            float64 `json:"cp"`
}

// Guide values and orders the catalog for browsing. The ranking view drops
// free items and, optionally, near-zero calorie ones.
func Guide(entries []catalog.MenuEntry, mode Mode, opts GuideOptions) []GuideEntry {
	out := make([]GuideEntry, 0, len(entries))

	for _, e := range entries {
		if opts.Category != "" && opts.Category != AllCategories && e.Category != opts.Category {
			continue
		}

		g := GuideEntry{
			MenuEntry:     e,
			CategoryLabel: catalog.Label(e.Category),
			DisplayPrice:  UnitPrice(e, mode),
		}
		if e.Calories > 0 {
			g.CP = decimal.NewFromFloat(g.DisplayPrice).
				Div(decimal.NewFromFloat(e.Calories)).
				Round(2).
				InexactFloat64()
		}

		if opts.Ranking {
			if opts.ExcludeLowCalorie && e.Calories <= lowCalorieCutoff {
				continue
			}
			if g.DisplayPrice <= 0 {
				continue
			}
		}

		out = append(out, g)
	}

	switch opts.Sort {
	case SortCPDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CP > out[j].CP })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].DisplayPrice > out[j].DisplayPrice })
	case SortCaloriesAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Calories < out[j].Calories })
	}

	return out
}

// Categories lists "All" followed by each catalog category once, in
// catalog order.
func Categories(entries []catalog.MenuEntry) []string {
	seen := map[string]bool{}
	out := []string{AllCategories}

	for _, e := range entries {
		if e.Category == "" || seen[e.Category] {
			continue
		}
		seen[e.Category] = true
		out = append(out, e.Category)
	}
	return out
}
