package leaderboard

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

// PostgresStore keeps one JSONB document per user in user_aggregates.
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, userID string) (*UserAggregate, error) {
	var agg UserAggregate

	err := s.db.QueryRow(ctx, `
		SELECT data
		FROM user_aggregates
		WHERE user_id = $1
	`, userID).Scan(&agg)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, &core.PersistenceError{Op: "get aggregate", Err: err}
	}

	normalize(&agg)
	return &agg, nil
}

// Update locks the user's row for the length of the transaction. A new
// user's row is inserted first so concurrent first submits serialize too.
func (s *PostgresStore) Update(ctx context.Context, userID string, fn UpdateFunc) (*UserAggregate, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, &core.PersistenceError{Op: "begin update", Err: err}
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO user_aggregates (user_id, data)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, NewAggregate())
	if err != nil {
		return nil, &core.PersistenceError{Op: "seed aggregate", Err: err}
	}

	var agg UserAggregate
	err = tx.QueryRow(ctx, `
		SELECT data
		FROM user_aggregates
		WHERE user_id = $1
		FOR UPDATE
	`, userID).Scan(&agg)
	if err != nil {
		return nil, &core.PersistenceError{Op: "lock aggregate", Err: err}
	}
	normalize(&agg)

	if err := fn(&agg); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_aggregates
		SET data = $2, updated_at = NOW()
		WHERE user_id = $1
	`, userID, &agg)
	if err != nil {
		return nil, &core.PersistenceError{Op: "write aggregate", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, &core.PersistenceError{Op: "commit aggregate", Err: err}
	}
	return &agg, nil
}

func (s *PostgresStore) All(ctx context.Context) (map[string]*UserAggregate, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id, data
		FROM user_aggregates
	`)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list aggregates", Err: err}
	}
	defer rows.Close()

	out := make(map[string]*UserAggregate)
	for rows.Next() {
		var (
			id  string
			agg UserAggregate
		)
		if err := rows.Scan(&id, &agg); err != nil {
			return nil, &core.PersistenceError{Op: "scan aggregate", Err: err}
		}
		normalize(&agg)
		out[id] = &agg
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "list aggregates", Err: err}
	}
	return out, nil
}

func (s *PostgresStore) Delete(ctx context.Context, userID string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM user_aggregates WHERE user_id = $1`, userID)
	if err != nil {
		return &core.PersistenceError{Op: "delete aggregate", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func normalize(agg *UserAggregate) {
	if agg.Plates == nil {
		agg.Plates = []PlateRecord{}
	}
}
