package catalog

import "time"

// MenuEntry is one dish of the buffet catalog.
type MenuEntry struct {
	Category        string  `json:"category"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	RestaurantPrice float64 `json:"restaurantPrice"`
	Calories        float64 `json:"calories"`
	Desc            string  `json:"desc"`
	ML              float64 `json:"ml,omitempty"`
}

// Snapshot is an immutable view of the catalog at one point in time.
type Snapshot struct {
	Entries   []MenuEntry `json:"entries"`
	FromSheet bool        `json:"fromSheet"`
	LoadedAt  time.Time   `json:"loadedAt"`
}

// Clone returns a copy of entries so callers cannot mutate shared state.
func Clone(entries []MenuEntry) []MenuEntry {
	if entries == nil {
		return nil
	}
	out := make([]MenuEntry, len(entries))
	copy(out, entries)
	return out
}
