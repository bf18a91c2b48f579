package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func ConnectPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres connection failed: %w", err)
	}

	log.Info().Msg("connected to postgres")

	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return pool, nil
}

// initPostgresSchema creates or updates the database schema
func initPostgresSchema(ctx context.Context, pool *pgxpool.Pool) error {

	// -------------------------------
	// USER AGGREGATES
	// -------------------------------
	aggregatesSQL := `
		CREATE TABLE IF NOT EXISTS user_aggregates (
			user_id    TEXT PRIMARY KEY,
			data       JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, aggregatesSQL); err != nil {
		return err
	}

	// -------------------------------
	// RANKING INDEX
	// -------------------------------
	rankIndexSQL := `
		CREATE INDEX IF NOT EXISTS idx_user_aggregates_total_price
		ON user_aggregates (((data->>'totalPrice')::numeric) DESC)
	`
	if _, err := pool.Exec(ctx, rankIndexSQL); err != nil {
		return err
	}

	log.Info().Msg("postgres schema ready")
	return nil
}
