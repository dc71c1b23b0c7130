package domain

import (
	"errors"
	"fmt"
)

// Error codes surfaced in logs as err_code.
const (
	CodeValidation  = "VALIDATION"
	CodeConflict    = "CONFLICT"
	CodeNotFound    = "NOT_FOUND"
	CodePersistence = "PERSISTENCE"
)

// ErrNotFound is returned by store lookups that match no row.
var ErrNotFound = errors.New("not found")

// ValidationError rejects user input without touching state.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code implements the err_code contract used by the router logs.
func (e *ValidationError) Code() string { return CodeValidation }

// ConflictError reports a unique value already owned by another record.
type ConflictError struct {
	Field string
	Value string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already taken", e.Field, e.Value)
}

func (e *ConflictError) Code() string { return CodeConflict }

// NotFoundError names the lookup that found nothing. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func (e *NotFoundError) Code() string { return CodeNotFound }

// PersistenceError wraps a store failure. The message was not applied.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Code() string { return CodePersistence }

// IsUserFacing reports whether err is answered with a corrective reply instead of an internal failure.
func IsUserFacing(err error) bool {
	var (
		v *ValidationError
		c *ConflictError
	)
	return errors.As(err, &v) || errors.As(err, &c) || errors.Is(err, ErrNotFound)
}
