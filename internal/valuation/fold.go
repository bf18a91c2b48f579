package valuation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

const (
	LiquidCategory = "Drink"
	DefaultCupML   = 250
)

// No "sake": it also romanizes 鮭 (salmon).
var defaultLiquidKeywords = []string{"酒", "茶", "飲", "beer", "wine", "juice", "coffee", "soda", "latte"}

// Liquids decides which dishes are drinks and how much a drink without a
// stated volume counts for.
type Liquids struct {
	Keywords []string
	CupML    float64
}

func DefaultLiquids() Liquids {
	return Liquids{
		Keywords: append([]string(nil), defaultLiquidKeywords...),
		CupML:    DefaultCupML,
	}
}

func (l Liquids) normalized() Liquids {
	if len(l.Keywords) == 0 {
		l.Keywords = defaultLiquidKeywords
	}
	if l.CupML <= 0 {
		l.CupML = DefaultCupML
	}
	return l
}

// Totals is the folded value of a list of plate items. Liquid is in ml;
// counted cups are converted at the configured cup size.
type Totals struct {
	Price      float64 `json:"price"`
	Calories   float64 `json:"calories"`
	Liquid     float64 `json:"liquid"`
	LiquidML   float64 `json:"liquidMl"`
	LiquidCups float64 `json:"liquidCups"`
	Dishes     int     `json:"dishes"`
}

// Fold sums price, calories and liquid over items with the default liquid
// rules. The same input always yields the same totals.
func Fold(items []core.PlateItem, mode Mode, entries []catalog.MenuEntry) Totals {
	return DefaultLiquids().Fold(items, mode, entries)
}

func (l Liquids) Fold(items []core.PlateItem, mode Mode, entries []catalog.MenuEntry) Totals {
	l = l.normalized()

	price := decimal.Zero
	calories := decimal.Zero
	ml := decimal.Zero
	cups := decimal.Zero
	dishes := 0

	for _, item := range items {
		if item.Count <= 0 {
			continue
		}
		count := decimal.NewFromInt(int64(item.Count))

		price = price.Add(decimal.NewFromFloat(ItemUnitPrice(item, entries, mode)).Mul(count))
		calories = calories.Add(decimal.NewFromFloat(ItemCalories(item, entries)).Mul(count))
		dishes += item.Count

		switch {
		case item.ML > 0:
			ml = ml.Add(decimal.NewFromFloat(item.ML).Mul(count))
		case l.IsLiquid(item):
			cups = cups.Add(count)
		}
	}

	return Totals{
		Price:      price.InexactFloat64(),
		Calories:   calories.InexactFloat64(),
		Liquid:     ml.Add(cups.Mul(decimal.NewFromFloat(l.CupML))).InexactFloat64(),
		LiquidML:   ml.InexactFloat64(),
		LiquidCups: cups.InexactFloat64(),
		Dishes:     dishes,
	}
}

// ItemCalories is the item's own calories, or its catalog entry's when the
// item has none.
func ItemCalories(item core.PlateItem, entries []catalog.MenuEntry) float64 {
	if c := nonNegative(item.Calories); c > 0 {
		return c
	}
	if e, ok := lookup(item.Name, entries); ok {
		return nonNegative(e.Calories)
	}
	return 0
}

// LiquidContribution is the ml one row adds under the default rules.
func LiquidContribution(item core.PlateItem) float64 {
	return DefaultLiquids().Contribution(item)
}

// Contribution is ml times count for items with a volume, a cup per unit for
// other drinks and zero for food.
func (l Liquids) Contribution(item core.PlateItem) float64 {
	l = l.normalized()

	if item.Count <= 0 {
		return 0
	}
	if item.ML > 0 {
		return item.ML * float64(item.Count)
	}
	if l.IsLiquid(item) {
		return l.CupML * float64(item.Count)
	}
	return 0
}

func IsLiquid(item core.PlateItem) bool {
	return DefaultLiquids().IsLiquid(item)
}

func (l Liquids) IsLiquid(item core.PlateItem) bool {
	if strings.EqualFold(strings.TrimSpace(item.Category), LiquidCategory) {
		return true
	}

	keywords := l.Keywords
	if len(keywords) == 0 {
		keywords = defaultLiquidKeywords
	}

	name := strings.ToLower(item.Name)
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" && strings.Contains(name, k) {
			return true
		}
	}
	return false
}
