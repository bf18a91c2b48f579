package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	t.Setenv("APP_ENV", "production")
	for k, v := range kv {
		t.Setenv(k, v)
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":      "s",
		"STORE_DRIVER":    "",
		"PORT":            "",
		"CATALOG_REFRESH": "",
		"ALLOW_ORIGINS":   "",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8000" || cfg.StoreDriver != DriverMemory || cfg.CatalogRefresh != 10*time.Minute {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if len(cfg.AllowOrigins) != 2 || !cfg.Production() {
		t.Fatalf("unexpected origins or env: %+v", cfg)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		ok   bool
	}{
		{"missing jwt", map[string]string{"JWT_SECRET": ""}, false},
		{"postgres needs url", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "postgres", "DATABASE_URL": ""}, false},
		{"postgres ok", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "postgres", "DATABASE_URL": "postgres://x"}, true},
		{"sqlite default path", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "sqlite", "SQLITE_PATH": ""}, true},
		{"unknown driver", map[string]string{"JWT_SECRET": "s", "STORE_DRIVER": "mongo"}, false},
		{"bad duration", map[string]string{"JWT_SECRET": "s", "CATALOG_REFRESH": "soon"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)
			_, err := Load()
			if (err == nil) != tt.ok {
				t.Fatalf("ok=%v, got err %v", tt.ok, err)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	got := splitList(" a, ,b ,")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadSettings(t *testing.T) {
	s, err := LoadSettings("")
	if err != nil || s.Dashboard.LunchPrice != 1380 {
		t.Fatalf("expected defaults, got %+v %v", s, err)
	}

	s, err = LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil || s.Dashboard.DinnerPrice != 1580 {
		t.Fatalf("missing file should yield defaults, got %+v %v", s, err)
	}

	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := `
lunch_price: 990
timezone: UTC
windows:
  - name: BRUNCH
    start: "10:00"
    end: "14:00"
liquid_keywords: [tea, beer]
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err = LoadSettings(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Dashboard.LunchPrice != 990 || s.Dashboard.DinnerPrice != 1580 {
		t.Fatalf("override or default lost: %+v", s.Dashboard)
	}
	if len(s.Dashboard.Windows) != 1 || s.Dashboard.Windows[0].Name != "BRUNCH" {
		t.Fatalf("windows not replaced: %+v", s.Dashboard.Windows)
	}
	if len(s.Dashboard.LiquidKeywords) != 2 {
		t.Fatalf("keywords not read: %v", s.Dashboard.LiquidKeywords)
	}
	if !s.Dashboard.Liquids().IsLiquid(core.PlateItem{Name: "Iced Tea"}) {
		t.Fatal("keywords not applied to liquid rules")
	}
}

func TestLoadSettingsRejectsBadWindow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	data := "windows:\n  - name: LATE\n    start: \"22:00\"\n    end: \"21:00\"\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadSettings(path); err == nil {
		t.Fatal("expected error for inverted window")
	}
}
