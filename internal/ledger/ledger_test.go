package ledger

import (
	"errors"
	"testing"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

func item(name string, price float64, count int) core.PlateItem {
	return core.PlateItem{Name: name, Price: price, Count: count, Category: "Sushi"}
}

func TestLedger_AppendAndFold(t *testing.T) {
	l := New()
	l.Append([]core.PlateItem{item("Eel", 90, 2), item("Egg", 40, 1)})
	l.Append([]core.PlateItem{item("Eel", 90, 1)})

	if l.Len() != 3 {
		t.Fatalf("expected 3 rows, got %d", l.Len())
	}

	totals := l.Fold(valuation.ModeMarket, nil)
	if totals.Price != 310 {
		t.Fatalf("expected 310, got %v", totals.Price)
	}

	again := l.Fold(valuation.ModeMarket, nil)
	if again != totals {
		t.Fatalf("fold changed between calls: %+v vs %+v", totals, again)
	}
}

func TestLedger_AppendDropsZeroCountAndBlank(t *testing.T) {
	l := New()
	l.Append([]core.PlateItem{item("Eel", 90, 0), item("  ", 10, 1), item("Egg", 40, 1)})

	items := l.Items()
	if len(items) != 1 || items[0].Name != "Egg" {
		t.Fatalf("unexpected ledger rows: %+v", items)
	}
}

func TestLedger_EmptyFoldsToZero(t *testing.T) {
	if got := New().Fold(valuation.ModeHotel, nil); got != (valuation.Totals{}) {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestLedger_UpdateAndRemove(t *testing.T) {
	l := New(item("Eel", 90, 1), item("Egg", 40, 1))

	if err := l.Update(0, item("Eel", 90, 3)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := l.Items()[0].Count; got != 3 {
		t.Fatalf("expected count 3, got %d", got)
	}

	if err := l.Update(1, item("Egg", 40, 0)); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if l.Len() != 1 {
		t.Fatalf("zero-count update should remove row, got %d rows", l.Len())
	}

	if err := l.Update(0, item(" ", 1, 1)); !errors.Is(err, core.ErrBlankItemName) {
		t.Fatalf("expected ErrBlankItemName, got %v", err)
	}
	if err := l.Remove(5); !errors.Is(err, core.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
}

func TestLedger_ClearNeedsConfirmation(t *testing.T) {
	l := New(item("Eel", 90, 1))

	if err := l.Clear(false); !errors.Is(err, core.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if l.Len() != 1 {
		t.Fatal("history cleared without confirmation")
	}

	if err := l.Clear(true); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if l.Len() != 0 {
		t.Fatal("history not cleared")
	}
}

func TestLedger_ReplaceAll(t *testing.T) {
	l := New(item("Eel", 90, 1))
	l.ReplaceAll([]core.PlateItem{item("Tuna", 120, 2)})

	items := l.Items()
	if len(items) != 1 || items[0].Name != "Tuna" {
		t.Fatalf("unexpected rows after replace: %+v", items)
	}
}

func TestLedger_LiquidTotals(t *testing.T) {
	l := New(
		core.PlateItem{Name: "生啤酒", Count: 2, Category: "Drink"},
		core.PlateItem{Name: "Highball", Count: 1, Category: "Drink", ML: 350},
		core.PlateItem{Name: "Eel", Count: 4, Category: "Sushi"},
	)

	totals := l.Fold(valuation.ModeMarket, nil)
	if totals.LiquidCups != 2 || totals.LiquidML != 350 {
		t.Fatalf("unexpected liquid totals: %+v", totals)
	}
}
