package session

import "time"

// Repository keeps live sessions by user id.
type Repository interface {
	Save(s *Session) error
	Get(userID string) (*Session, error)
	Delete(userID string) error
	// Expire drops sessions untouched since cutoff and reports how many.
	Expire(cutoff time.Time) int
}
