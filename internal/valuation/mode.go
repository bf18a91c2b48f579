package valuation

import (
	"strings"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

// Mode selects which price a dish is valued at.
type Mode string

const (
	ModeMarket Mode = "market"
	ModeHotel  Mode = "hotel"
)

// ParseMode accepts "market", "hotel" and the legacy "restaurant".
// An empty string means market.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ModeMarket):
		return ModeMarket, nil
	case string(ModeHotel), "restaurant":
		return ModeHotel, nil
	default:
		return "", core.ErrInvalidMode
	}
}
