package todo

import (
	"errors"
	"fmt"
)

var (
	// ErrItemNotFound is returned when an id is not in the user's collection
	ErrItemNotFound = errors.New("item not found")
	// ErrNotAuthenticated is returned when a session token does not resolve
	// to a user. Fatal to the session: the client must sign in again.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// ValidationError rejects an intent before any side effect. Reported to the
// user, never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// StoreError wraps a failed store operation. The cached view is left
// unchanged so the next subscription snapshot remains authoritative.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// IsStore reports whether err is a StoreError
func IsStore(err error) bool {
	var s *StoreError
	return errors.As(err, &s)
}
