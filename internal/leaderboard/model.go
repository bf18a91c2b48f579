package leaderboard

import "github.com/sposusu/eat-aware-scheduler/internal/core"

// PlateRecord is one submitted plate as stored on the server.
type PlateRecord struct {
	Items         []core.PlateItem `json:"items"`
	TotalPrice    float64          `json:"totalPrice"`
	TotalCalories float64          `json:"totalCalories"`
	Timestamp     int64            `json:"timestamp"`
	Synthetic     bool             `json:"synthetic,omitempty"`
}

// UserAggregate is the running total for one diner. TotalLiquid is in ml.
type UserAggregate struct {
	TotalPrice    float64       `json:"totalPrice"`
	TotalCalories float64       `json:"totalCalories"`
	TotalDishes   int           `json:"totalDishes"`
	TotalLiquid   float64       `json:"totalLiquid"`
	Plates        []PlateRecord `json:"plates"`
}

func NewAggregate() *UserAggregate {
	return &UserAggregate{Plates: []PlateRecord{}}
}

// Clone deep-copies the aggregate.
func (a *UserAggregate) Clone() *UserAggregate {
	if a == nil {
		return nil
	}
	out := *a
	out.Plates = make([]PlateRecord, len(a.Plates))
	for i, p := range a.Plates {
		p.Items = append([]core.PlateItem(nil), p.Items...)
		out.Plates[i] = p
	}
	return &out
}

// Entry is a ranked aggregate with its owner.
type Entry struct {
	ID string `json:"id"`
	UserAggregate
}

type Metric string

const (
	MetricPrice    Metric = "price"
	MetricCalories Metric = "calories"
	MetricDishes   Metric = "dishes"
	MetricLiquid   Metric = "liquid"
)

func ParseMetric(s string) (Metric, error) {
	switch m := Metric(s); m {
	case MetricPrice, MetricCalories, MetricDishes, MetricLiquid:
		return m, nil
	}
	return "", core.ErrInvalidMetric
}

type DishStat struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Price float64 `json:"price"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

type Stats struct {
	Participants int     `json:"participants"`
	Plates       int     `json:"plates"`
	Dishes       int     `json:"dishes"`
	TotalPrice   float64 `json:"totalPrice"`
	AvgPrice     float64 `json:"avgPrice"`
	MedianPrice  float64 `json:"medianPrice"`
}

type Board struct {
	ByPrice    []Entry `json:"byPrice"`
	ByCalories []Entry `json:"byCalories"`
	ByDishes   []Entry `json:"byDishes"`
	ByLiquid   []Entry `json:"byLiquid"`
	Stats      Stats   `json:"stats"`
}

type SubmitRequest struct {
	UserID        string           `json:"userId"`
	Items         []core.PlateItem `json:"items"`
	TotalPrice    float64          `json:"totalPrice"`
	TotalCalories float64          `json:"totalCalories"`
	Timestamp     int64            `json:"timestamp"`
}
