package model

import "errors"

// Error taxonomy surfaced to callers. Handlers map these onto HTTP status
// codes; stores wrap them with detail via fmt.Errorf and %w.
var (
	// ErrNotFound covers both unknown ids and cross-owner access attempts,
	// so a caller can never distinguish "absent" from "not yours".
	ErrNotFound = errors.New("not found")

	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("validation error")

	// ErrConflict is raised for duplicate emails today; reserved for
	// optimistic-concurrency checks later.
	ErrConflict = errors.New("conflict")
)
