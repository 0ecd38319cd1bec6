package services

import "errors"

// Domain error taxonomy. Services return these (usually wrapped with
// detail via fmt.Errorf("%w: ...")); handlers match with errors.Is and
// map them onto HTTP statuses. Anything else is treated as an internal
// failure and never leaks store details to the client.
var (
	ErrValidation   = errors.New("validation failed")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
