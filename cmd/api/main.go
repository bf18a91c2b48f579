package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "time/tzdata"

	"github.com/rs/zerolog/log"

	"github.com/sposusu/eat-aware-scheduler/internal/catalog"
	"github.com/sposusu/eat-aware-scheduler/internal/config"
	"github.com/sposusu/eat-aware-scheduler/internal/db"
	"github.com/sposusu/eat-aware-scheduler/internal/leaderboard"
	"github.com/sposusu/eat-aware-scheduler/internal/llm"
	"github.com/sposusu/eat-aware-scheduler/internal/logging"
	"github.com/sposusu/eat-aware-scheduler/internal/router"
	"github.com/sposusu/eat-aware-scheduler/internal/session"
	"github.com/sposusu/eat-aware-scheduler/internal/storage"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.SettingsPath).Msg("settings")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// ───────────────────────── STORE ─────────────────────────
	var store leaderboard.Store

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		store = leaderboard.NewPostgresStore(pool)

	case config.DriverSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("sqlite")
		}
		defer sqlDB.Close()
		store = leaderboard.NewSQLiteStore(sqlDB)

	default:
		log.Warn().Msg("using in-memory leaderboard, data is lost on restart")
		store = leaderboard.NewMemoryStore()
	}

	// ───────────────────────── CATALOG ─────────────────────────
	var source catalog.Source
	if cfg.CatalogURL != "" {
		source = catalog.NewLoader(cfg.CatalogURL, nil)
	}
	cache := catalog.NewCache(source)

	if err := cache.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("catalog unavailable, serving default menu")
	}
	go cache.Run(ctx, cfg.CatalogRefresh)

	// ───────────────────────── RECOGNITION ─────────────────────────
	var providers []llm.Provider

	if cfg.GeminiAPIKey != "" {
		for _, model := range append([]string{cfg.GeminiModel}, cfg.GeminiFallbackModels...) {
			providers = append(providers, llm.NewGeminiClient(cfg.GeminiAPIKey, model))
		}
	}

	if cfg.FallbackModel != "" {
		fallback, err := llm.NewOpenAICompatible(cfg.FallbackBaseURL, cfg.FallbackAPIKey, cfg.FallbackModel)
		if err != nil {
			log.Fatal().Err(err).Msg("fallback llm")
		}
		providers = append(providers, fallback)
	}

	if len(providers) == 0 {
		log.Warn().Msg("no recognition provider configured, photo recognition disabled")
	}
	recognizer := llm.NewChain(providers...)

	// ───────────────────────── SERVICES ─────────────────────────
	board := leaderboard.NewService(store, leaderboard.WithLiquids(settings.Dashboard.Liquids()))

	opts := []session.Option{session.WithSettings(settings.Dashboard)}

	if cfg.R2.Enabled() {
		r2Client, err := storage.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatal().Err(err).Msg("r2 init failed")
		}
		opts = append(opts, session.WithUploader(r2Client))
	}

	sessions := session.NewService(session.NewInMemoryRepository(), cache, recognizer, board, opts...)
	go sessions.RunJanitor(ctx, 10*time.Minute, cfg.SessionTTL)

	// ───────────────────────── HTTP ─────────────────────────
	r := router.NewRouter(router.Deps{
		Leaderboard:  leaderboard.NewHandler(board),
		Sessions:     session.NewHandler(sessions),
		AllowOrigins: cfg.AllowOrigins,
		AdminKeyHash: cfg.AdminKeyHash,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.StoreDriver).
			Int("recognizers", recognizer.Len()).
			Msg("API running")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			cancel()
		}
	}()

	// ───────────────────────── SHUTDOWN ─────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
