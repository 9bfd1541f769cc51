// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for the engine's error taxonomy. Callers match with
// errors.Is; the typed errors below carry detail and unwrap to these.
var (
	// ErrInvalidTransition indicates a status change not reachable from
	// the record's current state without force.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrProtectedField indicates an attempt to write a protected field
	// through the generic field-update path.
	ErrProtectedField = errors.New("protected field")

	// ErrRecordNotFound indicates a referenced record id is absent from
	// the current record set.
	ErrRecordNotFound = errors.New("record not found")

	// ErrInvalidParameter indicates malformed or missing required input.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// InvalidTransitionError reports a rejected status change.
type InvalidTransitionError struct {
	ID   string
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("record %s: invalid transition %s -> %s", e.ID, e.From, e.To)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// ProtectedFieldError reports a write attempt on a protected field.
type ProtectedFieldError struct {
	Field string
}

func (e *ProtectedFieldError) Error() string {
	return fmt.Sprintf("cannot update protected field: %s", e.Field)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ProtectedFieldError) Unwrap() error {
	return ErrProtectedField
}

// RecordNotFoundError reports a missing record id.
type RecordNotFoundError struct {
	ID string
}

func (e *RecordNotFoundError) Error() string {
	return fmt.Sprintf("record %q not found", e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *RecordNotFoundError) Unwrap() error {
	return ErrRecordNotFound
}

// InvalidParameterError reports malformed or missing input.
type InvalidParameterError struct {
	Param   string
	Message string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *InvalidParameterError) Unwrap() error {
	return ErrInvalidParameter
}
