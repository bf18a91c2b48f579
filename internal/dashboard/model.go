package dashboard

import "github.com/sposusu/eat-aware-scheduler/internal/valuation"

// Window is a daily service period, with times in "HH:MM".
type Window struct {
	Name  string `yaml:"name" json:"name"`
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// Settings are the diner's targets and the buffet's service hours.
type Settings struct {
	LunchPrice  float64  `yaml:"lunch_price" json:"lunchPrice"`
	DinnerPrice float64  `yaml:"dinner_price" json:"dinnerPrice"`
	CalorieGoal float64  `yaml:"calorie_goal" json:"calorieGoal"`
	LiquidGoal  float64  `yaml:"liquid_goal" json:"liquidGoal"`
	CupML       float64  `yaml:"cup_ml" json:"cupMl"`
	LunchHours  [2]int   `yaml:"lunch_hours" json:"lunchHours"`
	Timezone    string   `yaml:"timezone" json:"timezone"`
	Windows     []Window `yaml:"windows" json:"windows"`

	LiquidKeywords []string `yaml:"liquid_keywords" json:"liquidKeywords,omitempty"`
}

// Liquids is the drink rule set these settings describe.
func (s Settings) Liquids() valuation.Liquids {
	return valuation.Liquids{Keywords: s.LiquidKeywords, CupML: s.CupML}
}

func DefaultSettings() Settings {
	return Settings{
		LunchPrice:  1380,
		DinnerPrice: 1580,
		CalorieGoal: 2500,
		LiquidGoal:  4,
		CupML:       250,
		LunchHours:  [2]int{11, 16},
		Timezone:    "Asia/Taipei",
		Windows: []Window{
			{Name: "LUNCH_SESSION", Start: "11:30", End: "15:00"},
			{Name: "DINNER_SESSION", Start: "17:30", End: "21:30"},
		},
	}
}

const IdleSession = "SYSTEM_IDLE"

// WindowStatus describes where now falls in the service windows.
type WindowStatus struct {
	Session          string  `json:"session"`
	RemainingMinutes int     `json:"remainingMinutes"`
	Remaining        string  `json:"remaining"`
	Progress         float64 `json:"progress"`
	Urgent           bool    `json:"urgent"`
}

// Progress is a value measured against a goal.
type Progress struct {
	Current float64 `json:"current"`
	Goal    float64 `json:"goal"`
	Percent int     `json:"percent"`
	Over    bool    `json:"over"`
	Boost   bool    `json:"boost"`
}

type Advice struct {
	Positioning    string `json:"positioning"`
	Reason         string `json:"reason"`
	CalorieWarning bool   `json:"calorieWarning"`
	Warning        string `json:"warning,omitempty"`
}

type Dashboard struct {
	Window       WindowStatus     `json:"window"`
	Totals       valuation.Totals `json:"totals"`
	Budget       float64          `json:"budget"`
	PaybackScore int              `json:"paybackScore"`
	Price        Progress         `json:"price"`
	Calories     Progress         `json:"calories"`
	Liquid       Progress         `json:"liquid"`
	Advice       Advice           `json:"advice"`
}
