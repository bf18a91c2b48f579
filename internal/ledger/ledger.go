package ledger

import (
	"strings"
	"sync"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

// Ledger is the ordered history of committed plate items for one diner.
// Totals are always derived from the items, never stored.
type Ledger struct {
	mu    sync.RWMutex
	items []core.PlateItem
}

func New(items ...core.PlateItem) *Ledger {
	l := &Ledger{}
	l.items = sanitize(items)
	return l
}

// Append adds committed items in order. Zero-count and unnamed rows are
// dropped.
func (l *Ledger) Append(items []core.PlateItem) {
	clean := sanitize(items)
	if len(clean) == 0 {
		return
	}

	l.mu.Lock()
	l.items = append(l.items, clean...)
	l.mu.Unlock()
}

// ReplaceAll swaps the whole history, used for bulk edits.
func (l *Ledger) ReplaceAll(items []core.PlateItem) {
	clean := sanitize(items)

	l.mu.Lock()
	l.items = clean
	l.mu.Unlock()
}

// Update replaces the item at index i.
func (l *Ledger) Update(i int, item core.PlateItem) error {
	if item.Blank() {
		return core.ErrBlankItemName
	}
	if item.Count <= 0 {
		return l.Remove(i)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.items) {
		return core.ErrItemNotFound
	}
	item.Name = strings.TrimSpace(item.Name)
	l.items[i] = item
	return nil
}

func (l *Ledger) Remove(i int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i < 0 || i >= len(l.items) {
		return core.ErrItemNotFound
	}
	l.items = append(l.items[:i], l.items[i+1:]...)
	return nil
}

// Clear wipes the history. It refuses without explicit confirmation.
func (l *Ledger) Clear(confirm bool) error {
	if !confirm {
		return core.ErrNotConfirmed
	}

	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
	return nil
}

func (l *Ledger) Items() []core.PlateItem {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]core.PlateItem, len(l.items))
	copy(out, l.items)
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Fold totals the history in the given mode.
func (l *Ledger) Fold(mode valuation.Mode, entries []catalog.MenuEntry) valuation.Totals {
	return valuation.Fold(l.Items(), mode, entries)
}

func sanitize(items []core.PlateItem) []core.PlateItem {
	out := make([]core.PlateItem, 0, len(items))
	for _, item := range items {
		if item.Count <= 0 || item.Blank() {
			continue
		}
		item.Name = strings.TrimSpace(item.Name)
		if item.Category == "" {
			item.Category = core.DefaultCategory
		}
		out = append(out, item)
	}
	return out
}
