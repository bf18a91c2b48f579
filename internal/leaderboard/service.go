package leaderboard

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

const (
	DefaultRankLimit       = 20
	DefaultPopularityLimit = 50
)

type Service struct {
	store           Store
	now             func() time.Time
	rankLimit       int
	popularityLimit int
	liquids         valuation.Liquids
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLiquids sets how drinks are recognized and measured.
func WithLiquids(l valuation.Liquids) Option {
	return func(s *Service) { s.liquids = l }
}

func WithLimits(rank, popularity int) Option {
	return func(s *Service) {
		if rank > 0 {
			s.rankLimit = rank
		}
		if popularity > 0 {
			s.popularityLimit = popularity
		}
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:           store,
		now:             time.Now,
		rankLimit:       DefaultRankLimit,
		popularityLimit: DefaultPopularityLimit,
		liquids:         valuation.DefaultLiquids(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ------------------------------------------------------------
// Writes
// ------------------------------------------------------------

// Submit adds one plate to a diner's running totals. Price and calorie
// totals are taken as reported by the client.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*UserAggregate, error) {
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		return nil, core.ErrMissingUserID
	}
	if req.TotalPrice < 0 || req.TotalCalories < 0 {
		return nil, core.NewInputError("totals must not be negative")
	}

	items, err := normalizeItems(req.Items)
	if err != nil {
		return nil, err
	}

	ts := req.Timestamp
	if ts <= 0 {
		ts = s.now().UnixMilli()
	}

	dishes := 0
	liquid := decimal.Zero
	for _, item := range items {
		dishes += item.Count
		liquid = liquid.Add(decimal.NewFromFloat(s.liquids.Contribution(item)))
	}

	agg, err := s.store.Update(ctx, userID, func(agg *UserAggregate) error {
		agg.TotalPrice = decimal.NewFromFloat(agg.TotalPrice).Add(decimal.NewFromFloat(req.TotalPrice)).InexactFloat64()
		agg.TotalCalories = decimal.NewFromFloat(agg.TotalCalories).Add(decimal.NewFromFloat(req.TotalCalories)).InexactFloat64()
		agg.TotalDishes += dishes
		agg.TotalLiquid = decimal.NewFromFloat(agg.TotalLiquid).Add(liquid).InexactFloat64()
		agg.Plates = append(agg.Plates, PlateRecord{
			Items:         items,
			TotalPrice:    req.TotalPrice,
			TotalCalories: req.TotalCalories,
			Timestamp:     ts,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user", userID).
		Int("dishes", dishes).
		Float64("price", req.TotalPrice).
		Msg("plate submitted")

	return agg, nil
}

// UpdateHistory replaces a diner's plates with the given history. All totals
// are recomputed from it; the per-plate breakdown collapses into a single
// synthetic record dated at the latest known plate.
func (s *Service) UpdateHistory(ctx context.Context, userID string, history []core.PlateItem, mode valuation.Mode) (*UserAggregate, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, core.ErrMissingUserID
	}

	items, err := normalizeItems(history)
	if err != nil {
		return nil, err
	}

	totals := s.liquids.Fold(items, mode, nil)

	return s.store.Update(ctx, userID, func(agg *UserAggregate) error {
		ts := latestTimestamp(agg.Plates)
		if ts == 0 {
			ts = s.now().UnixMilli()
		}

		agg.TotalPrice = totals.Price
		agg.TotalCalories = totals.Calories
		agg.TotalDishes = totals.Dishes
		agg.TotalLiquid = totals.Liquid
		agg.Plates = []PlateRecord{}

		if len(items) > 0 {
			agg.Plates = append(agg.Plates, PlateRecord{
				Items:         items,
				TotalPrice:    totals.Price,
				TotalCalories: totals.Calories,
				Timestamp:     ts,
				Synthetic:     true,
			})
		}
		return nil
	})
}

// Reset removes a diner from the leaderboard.
func (s *Service) Reset(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return core.ErrMissingUserID
	}
	return s.store.Delete(ctx, userID)
}

// ------------------------------------------------------------
// Reads
// ------------------------------------------------------------

// User returns nil without error for unknown diners.
func (s *Service) User(ctx context.Context, userID string) (*UserAggregate, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, core.ErrMissingUserID
	}

	agg, err := s.store.Get(ctx, userID)
	if errors.Is(err, core.ErrNotFound) {
		return nil, nil
	}
	return agg, err
}

func (s *Service) Rank(ctx context.Context, metric Metric) ([]Entry, error) {
	if _, err := ParseMetric(string(metric)); err != nil {
		return nil, err
	}

	all, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	return rank(entries(all), metric, s.rankLimit), nil
}

// Leaderboard returns every ranking plus overall stats from one snapshot.
func (s *Service) Leaderboard(ctx context.Context) (*Board, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	list := entries(all)
	return &Board{
		ByPrice:    rank(list, MetricPrice, s.rankLimit),
		ByCalories: rank(list, MetricCalories, s.rankLimit),
		ByDishes:   rank(list, MetricDishes, s.rankLimit),
		ByLiquid:   rank(list, MetricLiquid, s.rankLimit),
		Stats:      stats(list),
	}, nil
}

// Popularity counts every dish across all stored plates.
func (s *Service) Popularity(ctx context.Context) ([]DishStat, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	type seen struct {
		ts   int64
		item core.PlateItem
	}

	var records []seen
	for _, e := range entries(all) {
		for _, p := range e.Plates {
			for _, item := range p.Items {
				records = append(records, seen{ts: p.Timestamp, item: item})
			}
		}
	}
	sort.SliceStable(records, func(i, j int) bool { return records[i].ts < records[j].ts })

	index := map[string]int{}
	var dishes []DishStat
	for _, r := range records {
		name := strings.TrimSpace(r.item.Name)
		if name == "" {
			continue
		}

		i, ok := index[name]
		if !ok {
			i = len(dishes)
			index[name] = i
			dishes = append(dishes, DishStat{Name: name})
		}

		dishes[i].Count += countOf(r.item)
		if r.item.Price > 0 {
			dishes[i].Price = r.item.Price
		}
	}

	sort.SliceStable(dishes, func(i, j int) bool {
		if dishes[i].Count != dishes[j].Count {
			return dishes[i].Count > dishes[j].Count
		}
		return dishes[i].Name < dishes[j].Name
	})

	if len(dishes) > s.popularityLimit {
		dishes = dishes[:s.popularityLimit]
	}
	if dishes == nil {
		dishes = []DishStat{}
	}
	return dishes, nil
}

// CategoryBreakdown sums market value per category across all plates.
func (s *Service) CategoryBreakdown(ctx context.Context) ([]CategoryTotal, error) {
	all, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}

	sums := map[string]decimal.Decimal{}
	for _, agg := range all {
		for _, p := range agg.Plates {
			for _, item := range p.Items {
				cat := strings.TrimSpace(item.Category)
				if cat == "" {
					cat = core.DefaultCategory
				}
				unit := valuation.Resolve(item.Price, item.RestaurantPrice, valuation.ModeMarket)
				sums[cat] = sums[cat].Add(decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(countOf(item)))))
			}
		}
	}

	out := make([]CategoryTotal, 0, len(sums))
	for cat, total := range sums {
		out = append(out, CategoryTotal{Category: cat, Total: total.InexactFloat64()})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// ------------------------------------------------------------
// Helpers
// ------------------------------------------------------------

// normalizeItems rejects unnamed rows and treats a missing count as one.
func normalizeItems(items []core.PlateItem) ([]core.PlateItem, error) {
	out := make([]core.PlateItem, 0, len(items))
	for _, item := range items {
		if item.Blank() {
			return nil, core.ErrBlankItemName
		}
		item.Name = strings.TrimSpace(item.Name)
		item.Count = countOf(item)
		if item.Category == "" {
			item.Category = core.DefaultCategory
		}
		out = append(out, item)
	}
	return out, nil
}

func countOf(item core.PlateItem) int {
	if item.Count <= 0 {
		return 1
	}
	return item.Count
}

func latestTimestamp(plates []PlateRecord) int64 {
	var ts int64
	for _, p := range plates {
		if p.Timestamp > ts {
			ts = p.Timestamp
		}
	}
	return ts
}

// entries flattens the store snapshot in id order so ties rank stably.
func entries(all map[string]*UserAggregate) []Entry {
	out := make([]Entry, 0, len(all))
	for id, agg := range all {
		out = append(out, Entry{ID: id, UserAggregate: *agg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func rank(list []Entry, metric Metric, limit int) []Entry {
	out := make([]Entry, len(list))
	copy(out, list)

	value := func(e Entry) float64 {
		switch metric {
		case MetricCalories:
			return e.TotalCalories
		case MetricDishes:
			return float64(e.TotalDishes)
		case MetricLiquid:
			return e.TotalLiquid
		default:
			return e.TotalPrice
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return value(out[i]) > value(out[j]) })

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// stats summarizes spend the same way market snapshots are built: sorted
// values, upper median, mean.
func stats(list []Entry) Stats {
	st := Stats{Participants: len(list)}
	if len(list) == 0 {
		return st
	}

	values := make([]float64, 0, len(list))
	sum := decimal.Zero
	for _, e := range list {
		values = append(values, e.TotalPrice)
		sum = sum.Add(decimal.NewFromFloat(e.TotalPrice))
		st.Plates += len(e.Plates)
		st.Dishes += e.TotalDishes
	}

	sort.Float64s(values)

	st.TotalPrice = sum.InexactFloat64()
	st.MedianPrice = values[len(values)/2]
	st.AvgPrice = sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
	return st
}
