package dashboard

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/core"
	"github.com/sposusu/eat-aware-scheduler/internal/valuation"
)

const (
	paybackStep     = 150
	paybackMax      = 10
	urgentMinutes   = 30
	calorieWarnRate = 0.8
)

// Build summarizes a history against the diner's settings at time now.
func Build(items []core.PlateItem, mode valuation.Mode, entries []catalog.MenuEntry, s Settings, now time.Time) Dashboard {
	now = s.localize(now)
	totals := s.Liquids().Fold(items, mode, entries)
	budget := s.Budget(now)

	cups := totals.LiquidCups
	if s.CupML > 0 {
		cups += totals.LiquidML / s.CupML
	}

	return Dashboard{
		Window:       s.CurrentWindow(now),
		Totals:       totals,
		Budget:       budget,
		PaybackScore: PaybackScore(totals.Price),
		Price:        NewProgress(totals.Price, budget),
		Calories:     NewProgress(totals.Calories, s.CalorieGoal),
		Liquid:       NewProgress(cups, s.LiquidGoal),
		Advice:       Advise(totals, budget, s.CalorieGoal),
	}
}

// Budget is the lunch price during lunch hours and the dinner price otherwise.
func (s Settings) Budget(now time.Time) float64 {
	h := s.localize(now).Hour()
	if h >= s.LunchHours[0] && h < s.LunchHours[1] {
		return s.LunchPrice
	}
	return s.DinnerPrice
}

// CurrentWindow finds the service window containing now.
func (s Settings) CurrentWindow(now time.Time) WindowStatus {
	now = s.localize(now)
	minute := now.Hour()*60 + now.Minute()

	for _, w := range s.Windows {
		start, err1 := clock(w.Start)
		end, err2 := clock(w.End)
		if err1 != nil || err2 != nil || end <= start {
			continue
		}
		if minute < start || minute >= end {
			continue
		}

		remaining := end - minute
		progress := float64(minute-start) / float64(end-start) * 100

		return WindowStatus{
			Session:          w.Name,
			RemainingMinutes: remaining,
			Remaining:        fmt.Sprintf("%dh %dm", remaining/60, remaining%60),
			Progress:         math.Min(100, math.Max(0, progress)),
			Urgent:           remaining <= urgentMinutes,
		}
	}

	return WindowStatus{Session: IdleSession, Remaining: "--:--"}
}

// PaybackScore rates value eaten on a 0-10 scale, one point per 150.
func PaybackScore(price float64) int {
	if price <= 0 {
		return 0
	}
	return int(math.Min(paybackMax, math.Floor(price/paybackStep)))
}

func NewProgress(current, goal float64) Progress {
	p := Progress{Current: current, Goal: goal}
	if goal <= 0 {
		return p
	}

	raw := current / goal * 100
	p.Percent = int(math.Round(raw))
	p.Over = raw >= 100
	p.Boost = raw >= 200
	return p
}

// Advise positions the eaten value against the budget, like a price check
// against a benchmark, and warns when calories near the goal.
func Advise(t valuation.Totals, budget, calorieGoal float64) Advice {
	a := Advice{
		Positioning: "TARGET_REACHED",
		Reason:      "Target value reached. Dessert is earned.",
	}
	if t.Price < budget {
		a.Positioning = "BUDGET_DEFICIT"
		a.Reason = fmt.Sprintf("%.0f short of the buffet price. Favour high-value dishes such as scallops or ayu.", budget-t.Price)
	}

	if calorieGoal > 0 && t.Calories > calorieGoal*calorieWarnRate {
		a.CalorieWarning = true
		a.Warning = "Calories above 80% of goal. Go easy on carbohydrates."
	}
	return a
}

func (s Settings) localize(t time.Time) time.Time {
	if s.Timezone == "" {
		return t
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return t
	}
	return t.In(loc)
}

func clock(hhmm string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, err
	}
	if h < 0 || h > 24 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid clock time %q", hhmm)
	}
	return h*60 + m, nil
}
