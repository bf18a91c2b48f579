package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/sposusu/eat-aware-scheduler/internal/storage"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the process configuration read from the environment.
type Config struct {
	AppEnv       string
	Port         string
	LogLevel     string
	LogPretty    bool
	AllowOrigins []string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	CatalogURL     string
	CatalogRefresh time.Duration

	GeminiAPIKey         string
	GeminiModel          string
	GeminiFallbackModels []string

	FallbackBaseURL string
	FallbackAPIKey  string
	FallbackModel   string

	JWTSecret    string
	AdminKeyHash string

	SessionTTL time.Duration

	R2 storage.R2Config

	SettingsPath string
}

// Production reports whether .env files are ignored.
func (c *Config) Production() bool {
	return c.AppEnv == "production"
}

// Load reads .env (outside production) and the environment, then checks
// the keys the chosen store driver needs.
func Load() (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		AppEnv:       getEnvOrDefault("APP_ENV", "development"),
		Port:         getEnvOrDefault("PORT", "8000"),
		LogLevel:     getEnvOrDefault("LOG_LEVEL", "info"),
		LogPretty:    getEnvOrDefault("LOG_PRETTY", "false") == "true",
		AllowOrigins: splitList(getEnvOrDefault("ALLOW_ORIGINS", "http://localhost:3000,http://localhost:5173")),

		StoreDriver: strings.ToLower(getEnvOrDefault("STORE_DRIVER", DriverMemory)),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SQLitePath:  getEnvOrDefault("SQLITE_PATH", "leaderboard.db"),

		CatalogURL: os.Getenv("CATALOG_URL"),

		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiFallbackModels: splitList(os.Getenv("GEMINI_FALLBACK_MODELS")),

		FallbackBaseURL: os.Getenv("LLM_FALLBACK_BASE_URL"),
		FallbackAPIKey:  os.Getenv("LLM_FALLBACK_API_KEY"),
		FallbackModel:   os.Getenv("LLM_FALLBACK_MODEL"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		AdminKeyHash: os.Getenv("ADMIN_KEY_HASH"),

		R2: storage.R2Config{
			Endpoint:      os.Getenv("R2_ENDPOINT"),
			AccessKey:     os.Getenv("R2_ACCESS_KEY"),
			SecretKey:     os.Getenv("R2_SECRET_KEY"),
			Bucket:        os.Getenv("R2_BUCKET_NAME"),
			PublicBaseURL: os.Getenv("R2_PUBLIC_BASE_URL"),
		},

		SettingsPath: os.Getenv("SETTINGS_PATH"),
	}

	var err error
	if cfg.CatalogRefresh, err = duration("CATALOG_REFRESH", "10m"); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = duration("SESSION_TTL", "12h"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{"JWT_SECRET": c.JWTSecret}

	switch c.StoreDriver {
	case DriverMemory:
	case DriverPostgres:
		required["DATABASE_URL"] = c.DatabaseURL
	case DriverSQLite:
		required["SQLITE_PATH"] = c.SQLitePath
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	for k, v := range required {
		if v == "" {
			return fmt.Errorf("missing env var: %s", k)
		}
	}
	return nil
}

// getEnvOrDefault returns environment variable value or default
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func duration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
