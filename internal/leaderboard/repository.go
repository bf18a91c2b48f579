package leaderboard

import "context"

// UpdateFunc mutates an aggregate in place. Returning an error aborts the
// update and leaves the stored aggregate untouched.
type UpdateFunc func(agg *UserAggregate) error

// Store persists aggregates keyed by user id.
type Store interface {
	// Get returns core.ErrNotFound for unknown users.
	Get(ctx context.Context, userID string) (*UserAggregate, error)

	// Update is an atomic read-modify-write of one user's aggregate. fn
	// receives a fresh aggregate when the user is new.
	Update(ctx context.Context, userID string, fn UpdateFunc) (*UserAggregate, error)

	All(ctx context.Context) (map[string]*UserAggregate, error)

	Delete(ctx context.Context, userID string) error
}
