package valuation

import (
	"github.com/shopspring/decimal"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

// HotelRatio is the assumed markup of the hotel price over the market price.
const HotelRatio = 1.5

var hotelRatio = decimal.NewFromFloat(HotelRatio)

// UnitPrice values one catalog entry in the given mode.
func UnitPrice(e catalog.MenuEntry, mode Mode) float64 {
	return Resolve(e.Price, e.RestaurantPrice, mode)
}

// Resolve picks the price for mode, deriving it from the other price when
// the preferred one is missing.
func Resolve(price, restaurantPrice float64, mode Mode) float64 {
	price = nonNegative(price)
	restaurantPrice = nonNegative(restaurantPrice)

	if mode == ModeHotel {
		if restaurantPrice > 0 {
			return restaurantPrice
		}
		return roundConverted(decimal.NewFromFloat(price).Mul(hotelRatio))
	}

	if price > 0 {
		return price
	}
	return roundConverted(decimal.NewFromFloat(restaurantPrice).Div(hotelRatio))
}

// ItemUnitPrice values a plate line, filling missing prices from its
// catalog entry.
func ItemUnitPrice(item core.PlateItem, entries []catalog.MenuEntry, mode Mode) float64 {
	price, restaurantPrice := item.Price, item.RestaurantPrice

	if e, ok := lookup(item.Name, entries); ok {
		if price <= 0 {
			price = e.Price
		}
		if restaurantPrice <= 0 {
			restaurantPrice = e.RestaurantPrice
		}
	}

	return Resolve(price, restaurantPrice, mode)
}

// Fill returns item with missing prices, calories, volume and category
// resolved against the catalog, so it can be valued without one.
func Fill(item core.PlateItem, entries []catalog.MenuEntry) core.PlateItem {
	market := ItemUnitPrice(item, entries, ModeMarket)
	hotel := ItemUnitPrice(item, entries, ModeHotel)

	if item.Price <= 0 {
		item.Price = market
	}
	if item.RestaurantPrice <= 0 {
		item.RestaurantPrice = hotel
	}
	item.Calories = ItemCalories(item, entries)

	if e, ok := lookup(item.Name, entries); ok {
		if item.ML <= 0 {
			item.ML = e.ML
		}
		if (item.Category == "" || item.Category == core.DefaultCategory) && e.Category != "" {
			item.Category = e.Category
		}
	}
	return item
}

// roundConverted rounds to whole currency units. A positive amount that
// would round to zero is kept unrounded.
func roundConverted(d decimal.Decimal) float64 {
	r := d.Round(0)
	if r.IsZero() && d.IsPositive() {
		return d.InexactFloat64()
	}
	return r.InexactFloat64()
}

func nonNegative(v float64) float64 {
	if v < 0 || v != v {
		return 0
	}
	return v
}
