package core

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

const DefaultCategory = "General"

// PlateItem is one line of a plate or of the ledger.
type PlateItem struct {
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	RestaurantPrice float64 `json:"restaurantPrice"`
	Calories        float64 `json:"calories"`
	Count           int     `json:"count"`
	Category        string  `json:"category"`
	ML              float64 `json:"ml,omitempty"`
}

// Blank reports whether the item has no usable name.
func (i PlateItem) Blank() bool {
	return strings.TrimSpace(i.Name) == ""
}

func BlankItem() PlateItem {
	return PlateItem{Count: 1, Category: DefaultCategory}
}

// Image is a captured plate photo.
type Image struct {
	Data []byte `json:"-"`
	MIME string `json:"mime"`
	URL  string `json:"url,omitempty"`
}

// Guess is a single dish reported by a recognizer.
type Guess struct {
	Name     string `json:"name"`
	Price    Number `json:"price"`
	Calories Number `json:"calories"`
	Count    Number `json:"count"`
}

type Recognition struct {
	Items   []Guess `json:"items"`
	Comment string  `json:"comment"`
}

// Number decodes from a JSON number or a numeric string. Anything else is 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*n = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		s = strings.TrimSpace(str)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

func (n Number) Float() float64 { return float64(n) }
