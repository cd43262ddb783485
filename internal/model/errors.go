package model

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a mutation targets an entity missing from the
// loaded workspace.
var ErrNotFound = errors.New("not found")

// ValidationError rejects input before any remote call is made.
type ValidationError struct {
	Field     string
	Message   string
	Duplicate bool
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid builds a ValidationError for field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

// RemoteError wraps any failure reported by the remote store.
type RemoteError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *RemoteError) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("remote %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// AuthError is returned when joining a household fails remotely.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("join household: %v", e.Err) }

func (e *AuthError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsRemote reports whether err is a RemoteError.
func IsRemote(err error) bool {
	var re *RemoteError
	return errors.As(err, &re)
}
