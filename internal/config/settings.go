package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sposusu/eat-aware-scheduler/internal/dashboard"
)

// Settings is the buffet settings file. Fields left out keep their
// defaults.
type Settings struct {
	Dashboard dashboard.Settings `yaml:",inline"`
}

// LoadSettings reads the YAML settings file. An empty path or a missing
// file yields the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{Dashboard: dashboard.DefaultSettings()}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return s, nil
}

func (s *Settings) Validate() error {
	d := s.Dashboard

	if d.LunchPrice < 0 || d.DinnerPrice < 0 || d.CalorieGoal < 0 || d.LiquidGoal < 0 || d.CupML < 0 {
		return errors.New("budgets and goals must not be negative")
	}
	if d.LunchHours[0] < 0 || d.LunchHours[1] > 24 || d.LunchHours[0] > d.LunchHours[1] {
		return fmt.Errorf("lunch_hours %v out of range", d.LunchHours)
	}
	if d.Timezone != "" {
		if _, err := time.LoadLocation(d.Timezone); err != nil {
			return fmt.Errorf("timezone: %w", err)
		}
	}

	for _, w := range d.Windows {
		if strings.TrimSpace(w.Name) == "" {
			return errors.New("window without name")
		}
		start, err := time.Parse("15:04", w.Start)
		if err != nil {
			return fmt.Errorf("window %s start: %w", w.Name, err)
		}
		end, err := time.Parse("15:04", w.End)
		if err != nil {
			return fmt.Errorf("window %s end: %w", w.Name, err)
		}
		if !end.After(start) {
			return fmt.Errorf("window %s ends before it starts", w.Name)
		}
	}
	return nil
}
