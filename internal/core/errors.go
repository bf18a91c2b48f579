package core

import (
	"errors"
	"fmt"
)

// InputError marks a request the caller can fix.
type InputError struct {
	msg string
}

func (e *InputError) Error() string { return e.msg }

func NewInputError(format string, args ...any) error {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

var (
	ErrMissingImage  = &InputError{msg: "image data required"}
	ErrMissingUserID = &InputError{msg: "userId required"}
	ErrBlankItemName = &InputError{msg: "item name must not be blank"}
	ErrEmptyPlate    = &InputError{msg: "plate has no named items"}
	ErrItemNotFound  = &InputError{msg: "item index out of range"}
	ErrNotConfirmed  = &InputError{msg: "clearing history requires confirmation"}
	ErrInvalidMode   = &InputError{msg: "unknown price mode"}
	ErrInvalidMetric = &InputError{msg: "unknown ranking metric"}
)

var (
	ErrInvalidState = errors.New("operation not allowed in current plate state")
	ErrNotFound     = errors.New("not found")
)

// UpstreamError wraps failures of the recognizer or the catalog source.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *UpstreamError) Unwrap() error { return e.Err }

// PersistenceError wraps store failures.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
