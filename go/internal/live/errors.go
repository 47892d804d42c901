package live

import "errors"

var (
	// ErrNotFound is returned when a workshop, session, pointer or timer record is missing.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when the caller does not hold controller authority.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrValidation is returned for bad input, rejected before any write.
	ErrValidation = errors.New("validation error")
	// ErrConflict is returned when a timer record changed between read and write.
	ErrConflict = errors.New("conflict")
)
