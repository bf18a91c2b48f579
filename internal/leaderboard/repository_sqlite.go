package leaderboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sposusu/eat-aware-scheduler/internal/core"
)

// SQLiteStore is the single-node store. The handle must allow only one
// open connection so transactions serialize.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Get(ctx context.Context, userID string) (*UserAggregate, error) {
	var raw string

	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM user_aggregates WHERE user_id = ?`, userID,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, &core.PersistenceError{Op: "get aggregate", Err: err}
	}

	return decodeAggregate(raw)
}

func (s *SQLiteStore) Update(ctx context.Context, userID string, fn UpdateFunc) (*UserAggregate, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &core.PersistenceError{Op: "begin update", Err: err}
	}
	defer tx.Rollback()

	agg := NewAggregate()

	var raw string
	err = tx.QueryRowContext(ctx,
		`SELECT data FROM user_aggregates WHERE user_id = ?`, userID,
	).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return nil, &core.PersistenceError{Op: "read aggregate", Err: err}
	default:
		if agg, err = decodeAggregate(raw); err != nil {
			return nil, err
		}
	}

	if err := fn(agg); err != nil {
		return nil, err
	}

	data, err := json.Marshal(agg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode aggregate: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO user_aggregates (user_id, data, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, userID, string(data))
	if err != nil {
		return nil, &core.PersistenceError{Op: "write aggregate", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &core.PersistenceError{Op: "commit aggregate", Err: err}
	}
	return agg, nil
}

func (s *SQLiteStore) All(ctx context.Context) (map[string]*UserAggregate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id, data FROM user_aggregates`)
	if err != nil {
		return nil, &core.PersistenceError{Op: "list aggregates", Err: err}
	}
	defer rows.Close()

	out := make(map[string]*UserAggregate)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, &core.PersistenceError{Op: "scan aggregate", Err: err}
		}
		agg, err := decodeAggregate(raw)
		if err != nil {
			return nil, err
		}
		out[id] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, &core.PersistenceError{Op: "list aggregates", Err: err}
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user_aggregates WHERE user_id = ?`, userID)
	if err != nil {
		return &core.PersistenceError{Op: "delete aggregate", Err: err}
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func decodeAggregate(raw string) (*UserAggregate, error) {
	agg := NewAggregate()
	if err := json.Unmarshal([]byte(raw), agg); err != nil {
		return nil, &core.PersistenceError{Op: "decode aggregate", Err: err}
	}
	normalize(agg)
	return agg, nil
}
