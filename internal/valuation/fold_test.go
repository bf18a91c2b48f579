package valuation

import (
	"testing"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

func TestFold(t *testing.T) {
	items := []core.PlateItem{
		{Name: "Salmon", Price: 70, RestaurantPrice: 120, Calories: 55, Count: 2, Category: "Sashimi"},
		{Name: "綠茶", Price: 0, Calories: 0, Count: 3, Category: "General"},
		{Name: "Draft Beer", Price: 180, Calories: 140, Count: 2, Category: "Drink", ML: 500},
		{Name: "Ghost", Price: 500, Count: 0},
	}

	got := Fold(items, ModeMarket, nil)

	if got.Price != 500 {
		t.Fatalf("expected price 500, got %v", got.Price)
	}
	if got.Calories != 390 {
		t.Fatalf("expected calories 390, got %v", got.Calories)
	}
	if got.LiquidCups != 3 || got.LiquidML != 1000 {
		t.Fatalf("unexpected liquid split: %+v", got)
	}
	if got.Liquid != 1000+3*DefaultCupML {
		t.Fatalf("expected liquid 1750 ml, got %v", got.Liquid)
	}
	if got.Dishes != 7 {
		t.Fatalf("expected 7 dishes, got %d", got.Dishes)
	}

	hotel := Fold(items, ModeHotel, nil)
	if hotel.Price != 120*2+0+270*2 {
		t.Fatalf("expected hotel price 780, got %v", hotel.Price)
	}
}

func TestFold_Empty(t *testing.T) {
	if got := Fold(nil, ModeMarket, catalog.Default()); got != (Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestFold_Idempotent(t *testing.T) {
	items := []core.PlateItem{{Name: "鮭魚 (Salmon)", Count: 3, Calories: 55}}
	entries := catalog.Default()

	a := Fold(items, ModeHotel, entries)
	b := Fold(items, ModeHotel, entries)
	if a != b {
		t.Fatalf("fold not deterministic: %+v vs %+v", a, b)
	}
	if a.Price != 360 {
		t.Fatalf("expected catalog hotel price 3x120, got %v", a.Price)
	}
}

func TestIsLiquid(t *testing.T) {
	tests := []struct {
		item core.PlateItem
		want bool
	}{
		{core.PlateItem{Name: "Cola", Category: "drink"}, true},
		{core.PlateItem{Name: "清酒"}, true},
		{core.PlateItem{Name: "烏龍茶"}, true},
		{core.PlateItem{Name: "Ribeye Steak"}, false},
		{core.PlateItem{Name: "Salmon", Category: "Sashimi"}, false},
		{core.PlateItem{Name: "Sake Nigiri", Category: "Sushi"}, false},
	}

	for _, tt := range tests {
		if got := IsLiquid(tt.item); got != tt.want {
			t.Fatalf("IsLiquid(%q) = %v, want %v", tt.item.Name, got, tt.want)
		}
	}
}

func TestLiquids_CustomRules(t *testing.T) {
	l := Liquids{Keywords: []string{"Smoothie"}, CupML: 300}

	if !l.IsLiquid(core.PlateItem{Name: "mango smoothie"}) {
		t.Fatal("configured keyword not matched")
	}
	if l.IsLiquid(core.PlateItem{Name: "Draft Beer"}) {
		t.Fatal("custom keywords should replace the defaults")
	}
	if got := l.Contribution(core.PlateItem{Name: "mango smoothie", Count: 2}); got != 600 {
		t.Fatalf("expected 600 ml, got %v", got)
	}

	// one 500 ml beer must not outweigh four counted cups
	beer := l.Fold([]core.PlateItem{{Name: "Beer", Category: "Drink", Count: 1, ML: 500}}, ModeMarket, nil)
	cups := l.Fold([]core.PlateItem{{Name: "Tea", Category: "Drink", Count: 4}}, ModeMarket, nil)
	if beer.Liquid >= cups.Liquid {
		t.Fatalf("units mixed: beer %v ml vs cups %v ml", beer.Liquid, cups.Liquid)
	}

	if got := (Liquids{}).Contribution(core.PlateItem{Name: "Cola", Category: "Drink", Count: 1}); got != DefaultCupML {
		t.Fatalf("zero value should fall back to defaults, got %v", got)
	}
}
